package models

import "time"

// FlaggedEntry is a moderation queue ticket for a quarantined request.
type FlaggedEntry struct {
	Flag_ID             string    `json:"flagId" db:"flag_id"`
	Original_Request_ID string    `json:"originalRequestId" db:"original_request_id"`
	Reporter_ID         int       `json:"reporterId" db:"reporter_id"`
	Reason              string    `json:"reason" db:"reason"`
	Datetime_Create     time.Time `json:"datetimeCreate" db:"datetime_create" goqu:"skipinsert"`
}

type FlagCreate struct {
	Reason string `json:"reason"`
}

// FlaggedEntryWithRequest is a queue row joined with the request under review.
type FlaggedEntryWithRequest struct {
	FlaggedEntry
	Content       string  `json:"content" db:"content"`
	Author_ID     int     `json:"authorId" db:"author_id"`
	Author_Name   string  `json:"authorName" db:"author_name"`
	Author_Photo  *string `json:"authorPhoto" db:"author_photo"`
	Prayed_Count  int     `json:"prayedCount" db:"prayed_count"`
	Comment_Count int     `json:"commentCount" db:"comment_count"`
}
