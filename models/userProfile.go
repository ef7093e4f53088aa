package models

import "time"

type UserProfile struct {
	User_Profile_ID int       `json:"userProfileId" db:"user_profile_id" goqu:"skipinsert"`
	Username        string    `json:"username" db:"username"`
	Password        string    `json:"-" db:"password"`
	Email           string    `json:"email" db:"email"`
	Display_Name    string    `json:"displayName" db:"display_name"`
	Photo_URL       *string   `json:"photoUrl" db:"photo_url"`
	Firebase_UID    *string   `json:"-" db:"firebase_uid"`
	Admin           bool      `json:"admin" db:"admin" goqu:"skipinsert"`
	Suspended       bool      `json:"suspended" db:"suspended" goqu:"skipinsert"`
	Premium         bool      `json:"premium" db:"premium" goqu:"skipinsert"`
	Datetime_Create time.Time `json:"datetimeCreate" db:"datetime_create" goqu:"skipinsert"`
	Datetime_Update time.Time `json:"datetimeUpdate" db:"datetime_update" goqu:"skipinsert"`
}

type UserProfileSignup struct {
	Username     string `json:"username" binding:"required"`
	Password     string `json:"password" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	Display_Name string `json:"displayName"`
}

type UserProfileUpdate struct {
	Display_Name *string `json:"displayName"`
	Photo_URL    *string `json:"photoUrl"`
}

// UserProfileAdminUpdate carries the role and status fields only admins may change.
type UserProfileAdminUpdate struct {
	Admin     *bool `json:"admin"`
	Suspended *bool `json:"suspended"`
}

type Login struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type FirebaseLogin struct {
	ID_Token string `json:"idToken" binding:"required"`
}
