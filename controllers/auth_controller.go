package controllers

import (
	"net/http"

	"github.com/ichchha07-wish/meal-system/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthController struct {
	users *services.UserService
	log   *zap.SugaredLogger
}

func NewAuthController(users *services.UserService, log *zap.SugaredLogger) *AuthController {
	return &AuthController{users: users, log: log}
}

func (a *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	user, err := a.users.Register(input)
	if err != nil {
		fail(c, a.log, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"message": "registration successful", "user": user})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (a *AuthController) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	token, user, err := a.users.Authenticate(input.Email, input.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid email or password"})
		return
	}
	ok(c, http.StatusOK, gin.H{"token": token, "role": user.Role, "user_id": user.ID})
}

func (a *AuthController) Profile(c *gin.Context) {
	userID, _ := principal(c)
	user, err := a.users.FindByID(userID)
	if err != nil {
		fail(c, a.log, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"user": user})
}
