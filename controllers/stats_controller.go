package controllers

import (
	"net/http"

	"github.com/ichchha07-wish/meal-system/models"
	"github.com/ichchha07-wish/meal-system/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatsController struct {
	stats *services.StatsService
	log   *zap.SugaredLogger
}

func NewStatsController(stats *services.StatsService, log *zap.SugaredLogger) *StatsController {
	return &StatsController{stats: stats, log: log}
}

func (sc *StatsController) Statistics(c *gin.Context) {
	userID, role := principal(c)
	switch role {
	case models.RoleProvider:
		st, err := sc.stats.ForProvider(userID)
		if err != nil {
			fail(c, sc.log, err)
			return
		}
		ok(c, http.StatusOK, gin.H{"data": st})
	case models.RoleBeneficiary:
		st, err := sc.stats.ForBeneficiary(userID)
		if err != nil {
			fail(c, sc.log, err)
			return
		}
		ok(c, http.StatusOK, gin.H{"data": st})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user role"})
	}
}
