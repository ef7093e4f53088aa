package models

import "time"

// Comment is a reply attached to a community prayer request
type Comment struct {
	Comment_ID        string    `json:"commentId" db:"comment_id"`
	Prayer_Request_ID string    `json:"prayerRequestId" db:"prayer_request_id"`
	Author_ID         int       `json:"authorId" db:"author_id"`
	Author_Name       string    `json:"authorName" db:"author_name"`
	Content           string    `json:"content" db:"content"`
	Datetime_Create   time.Time `json:"datetimeCreate" db:"datetime_create" goqu:"skipinsert"`
}

// CommentCreate represents the request body for creating a comment
type CommentCreate struct {
	Content string `json:"content"`
}
