package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/pos-app/middlewares"
	"github.com/yeremiapane/pos-app/services"
	"github.com/yeremiapane/pos-app/utils"
	"gorm.io/gorm"
)

type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

// Register creates a staff account.
func (uc *UserController) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Phone    string `json:"phone"`
		Password string `json:"password" binding:"required,min=6"`
		Role     string `json:"role" binding:"required"` // admin, manager, cashier, waiter
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := uc.Users.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     req.Role,
	})
	switch {
	case errors.Is(err, services.ErrUserExists):
		utils.RespondError(c, http.StatusConflict, err)
		return
	case errors.Is(err, services.ErrInvalidRole), errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	case err != nil:
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.WithFields(logrus.Fields{"email": user.Email, "role": user.Role}).Info("user registered")
	utils.RespondJSON(c, http.StatusCreated, "User registered", user)
}

// Login returns an access token and also sets it as an httpOnly cookie.
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, token, expiresAt, err := uc.Users.Login(c.Request.Context(), input.Email, input.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	middlewares.SetAccessTokenCookie(c, token, expiresAt)
	utils.InfoLogger.WithFields(logrus.Fields{"email": user.Email, "role": user.Role}).Info("login successful")
	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"user":       user,
	})
}

// Logout revokes the caller's token and clears the cookie.
func (uc *UserController) Logout(c *gin.Context) {
	token := c.GetString(middlewares.ContextToken)
	if token == "" {
		token, _ = c.Cookie(middlewares.AccessTokenCookie)
	}
	if err := uc.Users.Logout(c.Request.Context(), token); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	middlewares.ClearAccessTokenCookie(c)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}

// GetProfile returns the user behind the access token.
func (uc *UserController) GetProfile(c *gin.Context) {
	userID := c.GetUint(middlewares.ContextUserID)
	if userID == 0 {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	user, err := uc.Users.GetByID(c.Request.Context(), userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", user)
}
