package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DailyBread/models"
	"github.com/DailyBread/services"
)

const counterTimeout = 5 * time.Second

// GetTodayContent returns today's devotional, or the latest published one
// when today has nothing visible yet.
// GET /content/today
func GetTodayContent(c *gin.Context) {
	rec, err := contentService().GetTodayContent(c.Request.Context())
	if err != nil {
		respondError(c, err, "load today's content")
		return
	}

	writeContentView(c, rec)
}

// GET /content/latest
func GetLatestContent(c *gin.Context) {
	rec, err := contentService().GetLatestPublishedContent(c.Request.Context())
	if err != nil {
		respondError(c, err, "load the latest content")
		return
	}

	writeContentView(c, rec)
}

// GET /content/:date_key
func GetContentByDate(c *gin.Context) {
	dateKey := c.Param("date_key")
	if _, err := services.ParseDateKey(dateKey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date", "details": err.Error()})
		return
	}

	rec, err := contentService().GetVisibleContent(c.Request.Context(), dateKey)
	if err != nil {
		respondError(c, err, "load content")
		return
	}

	writeContentView(c, rec)
}

// RecordContentOpen counts a view without making the reader wait on it.
// POST /content/:date_key/open
func RecordContentOpen(c *gin.Context) {
	dateKey := c.Param("date_key")
	if _, err := services.ParseDateKey(dateKey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date", "details": err.Error()})
		return
	}

	svc := contentService()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), counterTimeout)
		defer cancel()

		if err := svc.RecordContentOpen(ctx, dateKey); err != nil {
			log.Printf("Failed to record open for content %s: %v", dateKey, err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"message": "Open recorded"})
}

// POST /content/:date_key/pray
func PrayForContent(c *gin.Context) {
	dateKey := c.Param("date_key")
	if _, err := services.ParseDateKey(dateKey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date", "details": err.Error()})
		return
	}

	prayers, err := contentService().RecordContentPrayer(c.Request.Context(), dateKey)
	if err != nil {
		respondError(c, err, "record your prayer")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Prayer recorded",
		"prayers": prayers,
	})
}

func writeContentView(c *gin.Context, rec models.ContentRecord) {
	etag := services.ContentETag(rec)
	c.Header("ETag", etag)
	c.Header("Cache-Control", "private, no-cache")

	if c.GetHeader("If-None-Match") == etag {
		c.AbortWithStatus(http.StatusNotModified)
		return
	}

	view, err := services.NewContentView(rec)
	if err != nil {
		respondError(c, err, "render content")
		return
	}

	c.JSON(http.StatusOK, gin.H{"content": view})
}
