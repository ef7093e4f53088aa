package models

import "time"

// PasswordResetCode is a one-time emailed code. Only its bcrypt hash is stored.
type PasswordResetCode struct {
	Password_Reset_Code_ID string    `json:"passwordResetCodeId" db:"password_reset_code_id"`
	User_Profile_ID        int       `json:"userProfileId" db:"user_profile_id"`
	Code_Hash              string    `json:"-" db:"code_hash"`
	Expires_At             time.Time `json:"expiresAt" db:"expires_at"`
	Used                   bool      `json:"used" db:"used" goqu:"skipinsert"`
	Attempts               int       `json:"attempts" db:"attempts" goqu:"skipinsert"`
	Datetime_Create        time.Time `json:"datetimeCreate" db:"datetime_create" goqu:"skipinsert"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type VerifyResetCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}
