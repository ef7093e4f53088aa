package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DailyBread/models"
	"github.com/DailyBread/services"
)

// TestModerationAlert sends a sample moderation alert so admins can check
// the Resend configuration without flagging a real request.
// POST /admin/alerts/test
func TestModerationAlert(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	emailService := services.GetEmailService()
	if !emailService.AlertsEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Email service is not initialized. Check RESEND_API_KEY and MODERATION_ALERT_EMAIL",
		})
		return
	}

	entry := models.FlaggedEntry{
		Flag_ID:         "test",
		Reporter_ID:     currentUser.User_Profile_ID,
		Reason:          models.FlagReasons[0],
		Datetime_Create: time.Now(),
	}
	req := models.CommunityPrayerRequest{
		Author_ID:   currentUser.User_Profile_ID,
		Author_Name: "Test alert",
		Content:     "This is a test of the moderation alert email. No action is needed.",
	}

	if err := emailService.SendModerationAlert(entry, req); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send test alert", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Test alert sent"})
}
