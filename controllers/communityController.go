package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DailyBread/models"
	"github.com/DailyBread/services"
)

// GET /prayer-requests
func GetPrayerFeed(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}

	requests, err := communityService().ListFeed(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err, "load prayer requests")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prayerRequests": requests,
		"limit":          limit,
		"offset":         offset,
	})
}

// POST /prayer-requests
func CreatePrayerRequest(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var body models.CommunityPrayerRequestCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	req, err := communityService().CreatePrayerRequest(c.Request.Context(), currentUser, body.Content)
	if err != nil {
		respondError(c, err, "share your prayer request")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":       "Prayer request shared",
		"prayerRequest": req,
	})
}

// GET /prayer-requests/:request_id
func GetPrayerRequest(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)
	requestID := c.Param("request_id")
	svc := communityService()

	req, err := svc.GetPrayerRequest(c.Request.Context(), requestID, currentUser)
	if err != nil {
		respondError(c, err, "load the prayer request")
		return
	}

	prayed, err := svc.HasUserPrayed(c.Request.Context(), requestID, currentUser.User_Profile_ID)
	if err != nil {
		respondError(c, err, "load the prayer request")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"prayerRequest": req,
		"prayed":        prayed,
	})
}

// DELETE /prayer-requests/:request_id
func DeletePrayerRequest(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)
	requestID := c.Param("request_id")

	err := communityService().DeletePrayerRequest(c.Request.Context(), requestID, currentUser)
	if errors.Is(err, services.ErrNotFound) {
		log.Printf("Delete of prayer request %s ignored: no such request", requestID)
		c.JSON(http.StatusOK, gin.H{"message": "Prayer request deleted"})
		return
	}
	if err != nil {
		respondError(c, err, "delete the prayer request")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Prayer request deleted"})
}

// POST /prayer-requests/:request_id/pray
func PrayForRequest(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	result, err := communityService().Pray(c.Request.Context(), c.Param("request_id"), currentUser.User_Profile_ID)
	if err != nil {
		respondError(c, err, "record your prayer")
		return
	}

	c.JSON(http.StatusOK, result)
}

// DELETE /prayer-requests/:request_id/pray
func UnprayForRequest(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	result, err := communityService().Unpray(c.Request.Context(), c.Param("request_id"), currentUser.User_Profile_ID)
	if err != nil {
		respondError(c, err, "remove your prayer")
		return
	}

	c.JSON(http.StatusOK, result)
}

// GET /prayer-requests/:request_id/pray
func GetPrayStatus(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	prayed, err := communityService().HasUserPrayed(c.Request.Context(), c.Param("request_id"), currentUser.User_Profile_ID)
	if err != nil {
		respondError(c, err, "check your prayer")
		return
	}

	c.JSON(http.StatusOK, gin.H{"prayed": prayed})
}
