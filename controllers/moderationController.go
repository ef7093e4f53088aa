package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DailyBread/models"
)

// FlagPrayerRequest moves a request out of the feed and into the moderation queue.
// POST /prayer-requests/:request_id/flag
func FlagPrayerRequest(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var body models.FlagCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	entry, err := moderationService().FlagPrayerRequest(c.Request.Context(), c.Param("request_id"), currentUser.User_Profile_ID, body.Reason)
	if err != nil {
		respondError(c, err, "report the prayer request")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Thank you. The prayer request has been sent for review.",
		"flag":    entry,
	})
}

// GET /admin/flagged
func GetFlaggedRequests(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	entries, err := moderationService().ListFlagged(c.Request.Context(), currentUser)
	if err != nil {
		respondError(c, err, "load the moderation queue")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"flagged": entries,
		"reasons": models.FlagReasons,
	})
}

// POST /admin/flagged/:flag_id/approve
func ApproveFlaggedRequest(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	entry, err := moderationService().ApproveFlagged(c.Request.Context(), currentUser, c.Param("flag_id"))
	if err != nil {
		respondError(c, err, "approve the prayer request")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Prayer request restored to the feed",
		"flag":    entry,
	})
}

// POST /admin/flagged/:flag_id/reject
func RejectFlaggedRequest(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	entry, err := moderationService().RejectFlagged(c.Request.Context(), currentUser, c.Param("flag_id"))
	if err != nil {
		respondError(c, err, "delete the prayer request")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Prayer request deleted",
		"flag":    entry,
	})
}
