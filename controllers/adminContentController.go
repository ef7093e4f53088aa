package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DailyBread/models"
	"github.com/DailyBread/services"
)

// GetAdminDashboard is the first call an admin session makes, so it doubles
// as the opportunistic auto-publish trigger.
// GET /admin/dashboard
func GetAdminDashboard(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)
	ctx := c.Request.Context()
	content := contentService()

	sweep, err := content.SweepScheduledContent(ctx)
	if err != nil {
		// The dashboard is still useful with stale statuses.
		log.Printf("Auto-publish sweep on dashboard load failed: %v", err)
	}

	records, err := content.ListAllContentWithStatus(ctx, "all")
	if err != nil {
		respondError(c, err, "load content")
		return
	}

	flagged, err := moderationService().ListFlagged(ctx, currentUser)
	if err != nil {
		respondError(c, err, "load the moderation queue")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"sweep":        sweep,
		"content":      records,
		"flaggedCount": len(flagged),
	})
}

// POST /admin/content/sweep
func SweepScheduledContent(c *gin.Context) {
	result, err := contentService().SweepScheduledContent(c.Request.Context())
	if err != nil {
		respondError(c, err, "publish scheduled content")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Sweep complete",
		"sweep":   result,
	})
}

// GET /admin/content?status=all|draft|scheduled|published
func ListAdminContent(c *gin.Context) {
	records, err := contentService().ListAllContentWithStatus(c.Request.Context(), c.Query("status"))
	if err != nil {
		respondError(c, err, "load content")
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": records})
}

// GET /admin/content/:date_key
func GetAdminContent(c *gin.Context) {
	rec, err := contentService().GetContentByDateKey(c.Request.Context(), c.Param("date_key"))
	if err != nil {
		respondError(c, err, "load content")
		return
	}

	view, err := services.NewContentView(rec)
	if err != nil {
		respondError(c, err, "render content")
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": view})
}

// PUT /admin/content/:date_key
func SaveContent(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var save models.ContentSave
	if err := c.ShouldBindJSON(&save); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	rec, err := contentService().UpsertContent(c.Request.Context(), currentUser, c.Param("date_key"), save)
	if err != nil {
		respondError(c, err, "save content")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Content saved",
		"content": rec,
	})
}

// DELETE /admin/content/:date_key
func DeleteContent(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)
	dateKey := c.Param("date_key")

	err := contentService().DeleteContent(c.Request.Context(), currentUser, dateKey)
	if errors.Is(err, services.ErrNotFound) {
		log.Printf("Delete of content %s ignored: no such record", dateKey)
		c.JSON(http.StatusOK, gin.H{"message": "Content deleted"})
		return
	}
	if err != nil {
		respondError(c, err, "delete content")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Content deleted"})
}
