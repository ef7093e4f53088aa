package models

import "time"

// FlagReasons are the only reasons accepted when flagging a request.
var FlagReasons = []string{
	"Inappropriate Content",
	"Spam/Scam",
	"Harassment",
	"False Information",
}

// CommunityPrayerRequest is a request posted to the community feed. The author
// fields are a snapshot taken at submission time.
type CommunityPrayerRequest struct {
	Prayer_Request_ID string    `json:"prayerRequestId" db:"prayer_request_id"`
	Author_ID         int       `json:"authorId" db:"author_id"`
	Author_Name       string    `json:"authorName" db:"author_name"`
	Author_Photo      *string   `json:"authorPhoto" db:"author_photo"`
	Content           string    `json:"content" db:"content"`
	Prayed_Count      int       `json:"prayedCount" db:"prayed_count" goqu:"skipinsert"`
	Comment_Count     int       `json:"commentCount" db:"comment_count" goqu:"skipinsert"`
	Is_Flagged        bool      `json:"isFlagged" db:"is_flagged" goqu:"skipinsert"`
	Datetime_Create   time.Time `json:"datetimeCreate" db:"datetime_create" goqu:"skipinsert"`
}

type CommunityPrayerRequestCreate struct {
	Content string `json:"content"`
}

// PrayerInteraction records that a user has prayed for a request.
type PrayerInteraction struct {
	Prayer_Request_ID string    `json:"prayerRequestId" db:"prayer_request_id"`
	User_Profile_ID   int       `json:"userProfileId" db:"user_profile_id"`
	Datetime_Create   time.Time `json:"datetimeCreate" db:"datetime_create" goqu:"skipinsert"`
}

// PrayerToggleResult is returned by pray and un-pray.
type PrayerToggleResult struct {
	Prayed       bool `json:"prayed"`
	Prayed_Count int  `json:"prayedCount" db:"prayed_count"`
}
