package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DailyBread/initializers"
	"github.com/DailyBread/middlewares"
	"github.com/DailyBread/services"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// respondError maps a service error onto a status code. action completes the
// sentence "Failed to ..." shown to the user.
func respondError(c *gin.Context, err error, action string) {
	var validationErr *services.ValidationError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message, "field": validationErr.Field})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "You don't have permission to " + action})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "details": err.Error()})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Conflict", "details": err.Error()})
	default:
		log.Printf("Failed to %s: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to " + action + ", please try again", "details": err.Error()})
	}
}

func publishLocation() *time.Location {
	if initializers.AppConfig == nil {
		return nil
	}
	return initializers.AppConfig.PublishLocation
}

func contentService() *services.ContentService {
	return services.NewContentService(initializers.DB, publishLocation())
}

func communityService() *services.CommunityService {
	return services.NewCommunityService(initializers.DB)
}

func moderationService() *services.ModerationService {
	return services.NewModerationService(initializers.DB, moderationAlerter())
}

// moderationAlerter hands out the email service only when it is configured;
// a typed nil would defeat the nil check in the moderation service.
func moderationAlerter() services.ModerationAlerter {
	if emailService := services.GetEmailService(); emailService.AlertsEnabled() {
		return emailService
	}
	return nil
}

func resetMailer() services.ResetCodeMailer {
	if emailService := services.GetEmailService(); emailService != nil {
		return emailService
	}
	return nil
}

func passwordResetService() *services.PasswordResetService {
	return services.NewPasswordResetService(initializers.DB, resetMailer(), middlewares.SigningSecret())
}

// pagination reads ?limit= and ?offset= with defaults and an upper bound.
func pagination(c *gin.Context) (limit, offset uint, ok bool) {
	limit, offset = defaultPageSize, 0

	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil || n == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return 0, 0, false
		}
		limit = uint(n)
		if limit > maxPageSize {
			limit = maxPageSize
		}
	}

	if raw := c.Query("offset"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid offset"})
			return 0, 0, false
		}
		offset = uint(n)
	}

	return limit, offset, true
}
