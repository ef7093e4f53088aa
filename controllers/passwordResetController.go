package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DailyBread/models"
	"github.com/DailyBread/services"
)

// ForgotPassword emails a 6-digit recovery code to the address, if it belongs to anyone.
// POST /auth/forgot-password
func ForgotPassword(c *gin.Context) {
	var req models.ForgotPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Valid email address is required", "details": err.Error()})
		return
	}

	svc := passwordResetService()
	if svc.Mailer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Email service unavailable"})
		return
	}

	if err := svc.RequestReset(c.Request.Context(), req.Email); err != nil {
		log.Printf("Failed to process password reset request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process password reset request"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "If this email exists in our system, a verification code has been sent.",
	})
}

// VerifyResetCode trades a valid code for a short-lived reset token.
// POST /auth/verify-reset-code
func VerifyResetCode(c *gin.Context) {
	var req models.VerifyResetCodeRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and 6-digit code are required", "details": err.Error()})
		return
	}

	token, err := passwordResetService().VerifyCode(c.Request.Context(), req.Email, req.Code)
	if errors.Is(err, services.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired verification code"})
		return
	}
	if err != nil {
		log.Printf("Failed to verify reset code: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Verification code is valid",
		"token":   token,
	})
}

// POST /auth/reset-password
func ResetPassword(c *gin.Context) {
	var req models.ResetPasswordRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Token and new password are required", "details": err.Error()})
		return
	}

	err := passwordResetService().ResetPassword(c.Request.Context(), req.Token, req.NewPassword)
	if errors.Is(err, services.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}
	if err != nil {
		respondError(c, err, "reset your password")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Password reset successfully. You can now login with your new password.",
	})
}
