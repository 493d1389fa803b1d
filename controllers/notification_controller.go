package controllers

import (
	"fmt"
	"net/http"

	"github.com/ichchha07-wish/meal-system/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type NotificationController struct {
	notifications *services.NotificationService
	log           *zap.SugaredLogger
}

func NewNotificationController(n *services.NotificationService, log *zap.SugaredLogger) *NotificationController {
	return &NotificationController{notifications: n, log: log}
}

func (nc *NotificationController) List(c *gin.Context) {
	userID, _ := principal(c)
	rows, err := nc.notifications.List(userID)
	if err != nil {
		fail(c, nc.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"data": rows, "count": len(rows)})
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		return
	}
	userID, _ := principal(c)
	if err := nc.notifications.MarkRead(userID, id); err != nil {
		fail(c, nc.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": "Notification marked as read"})
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	userID, _ := principal(c)
	updated, err := nc.notifications.MarkAllRead(userID)
	if err != nil {
		fail(c, nc.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"message": fmt.Sprintf("%d notification(s) marked as read", updated)})
}
