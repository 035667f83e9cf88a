package routes

import (
	"errors"
	"net/http"
	"time"

	"plagiarism-check-platform/internal/config"
	"plagiarism-check-platform/internal/logger"
	"plagiarism-check-platform/internal/store"
	"plagiarism-check-platform/models"
	"plagiarism-check-platform/services"
	"plagiarism-check-platform/utils"

	"github.com/gin-gonic/gin"
)

func SetupAuthRoutes(router *gin.Engine, cfg *config.Config, users *store.UserStore, checkService *services.CheckService) {
	auth := router.Group("/auth")

	auth.POST("/login", func(c *gin.Context) {
		var req models.LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := utils.WithTimeout(c.Request.Context())
		defer cancel()

		user, err := users.GetUserByUsername(ctx, req.Username)
		if errors.Is(err, store.ErrNotFound) {
			utils.RespondWithUnauthorized(c, "Invalid username or password")
			return
		}
		if err != nil {
			logger.Error("login lookup failed", "username", req.Username, "error", err)
			utils.RespondWithInternalError(c, "Failed to process login", nil)
			return
		}

		if !utils.CheckPassword(req.Password, user.PasswordHash) {
			utils.RespondWithUnauthorized(c, "Invalid username or password")
			return
		}

		// Bring the quota counter up to date so the response shows the
		// correct remaining figure after a day rollover.
		if err := checkService.TouchQuotaOnLogin(ctx, user.ID); err != nil {
			logger.Warn("quota reset on login failed", "user_id", user.ID, "error", err)
		}

		duration, err := time.ParseDuration(cfg.JWTExpiresIn)
		if err != nil {
			duration = 24 * time.Hour
		}
		token, err := utils.GenerateJWT(user.ID, user.Role, cfg.JWTSecret, duration)
		if err != nil {
			logger.Error("token generation failed", "user_id", user.ID, "error", err)
			utils.RespondWithInternalError(c, "Failed to generate token", nil)
			return
		}

		remaining, limit := checkService.RemainingChecks(user)
		c.JSON(http.StatusOK, models.LoginResponse{
			Token:     token,
			ExpiresAt: time.Now().Add(duration),
			User: models.UserInfo{
				ID:                   user.ID,
				Username:             user.Username,
				Name:                 user.Name,
				Role:                 user.Role,
				RemainingChecksToday: remaining,
				DailyCheckLimit:      limit,
			},
		})
	})
}
