package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DailyBread/models"
	"github.com/DailyBread/services"
)

// GetPrayerComments lists a request's comments, oldest first
// GET /prayer-requests/:request_id/comments
func GetPrayerComments(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	comments, err := communityService().ListComments(c.Request.Context(), c.Param("request_id"), currentUser)
	if err != nil {
		respondError(c, err, "load comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// CreateComment adds a comment and bumps the request's comment count
// POST /prayer-requests/:request_id/comments
func CreateComment(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var body models.CommentCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	comment, err := communityService().AddComment(c.Request.Context(), c.Param("request_id"), currentUser, body.Content)
	if err != nil {
		respondError(c, err, "post your comment")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment created successfully",
		"comment": comment,
	})
}

// DeleteComment removes a comment; its author and admins may do so
// DELETE /prayer-requests/:request_id/comments/:comment_id
func DeleteComment(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)
	commentID := c.Param("comment_id")

	err := communityService().DeleteComment(c.Request.Context(), c.Param("request_id"), commentID, currentUser)
	if errors.Is(err, services.ErrNotFound) {
		log.Printf("Delete of comment %s ignored: no such comment", commentID)
		c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
		return
	}
	if err != nil {
		respondError(c, err, "delete the comment")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Comment deleted successfully"})
}
