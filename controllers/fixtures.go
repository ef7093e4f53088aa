package controllers

import (
	"time"

	"github.com/DailyBread/models"
	"golang.org/x/crypto/bcrypt"
)

// Test fixture data for use in tests

const (
	testRequestID = "6f1c2b9e-3f44-4b7e-9a57-0c1d2e3f4a5b"
	testCommentID = "0b8e7d6c-5a4b-4c3d-8e2f-1a0b9c8d7e6f"
	testFlagID    = "d4c3b2a1-9f8e-4d7c-b6a5-4e3d2c1b0a99"
	testEntryID   = "3a2b1c0d-9e8f-4a7b-8c6d-5e4f3a2b1c0d"
)

// MockUser creates a sample user profile for testing
func MockUser() models.UserProfile {
	return models.UserProfile{
		User_Profile_ID: 1,
		Username:        "testuser",
		Email:           "test@example.com",
		Display_Name:    "Test User",
		Admin:           false,
		Datetime_Create: time.Now(),
		Datetime_Update: time.Now(),
	}
}

// MockUserWithPassword creates a sample user with a bcrypt hashed password
// Password is "password123" - use this in tests
func MockUserWithPassword() models.UserProfile {
	user := MockUser()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user.Password = string(hashedPassword)
	return user
}

// MockAdminUser creates a sample admin user for testing
func MockAdminUser() models.UserProfile {
	return models.UserProfile{
		User_Profile_ID: 2,
		Username:        "adminuser",
		Email:           "admin@example.com",
		Display_Name:    "Admin User",
		Admin:           true,
		Datetime_Create: time.Now(),
		Datetime_Update: time.Now(),
	}
}

// MockAdminUserWithPassword creates a sample admin user with a bcrypt hashed password
// Password is "admin123" - use this in tests
func MockAdminUserWithPassword() models.UserProfile {
	user := MockAdminUser()
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	user.Password = string(hashedPassword)
	return user
}
