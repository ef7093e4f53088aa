package models

import (
	"time"

	"github.com/lib/pq"
)

const (
	ContentStatusDraft     = "draft"
	ContentStatusScheduled = "scheduled"
	ContentStatusPublished = "published"
)

// ContentRecord is one calendar day's devotional package, keyed by date.
type ContentRecord struct {
	Date_Key        string         `json:"dateKey" db:"date_key"`
	Status          string         `json:"status" db:"status"`
	Publish_At      *time.Time     `json:"publishAt" db:"publish_at"`
	Verse_Text      string         `json:"verseText" db:"verse_text"`
	Verse_Reference string         `json:"verseReference" db:"verse_reference"`
	Prayer          string         `json:"prayer" db:"prayer"`
	Devotional      string         `json:"devotional" db:"devotional"`
	Journal_Prompts pq.StringArray `json:"journalPrompts" db:"journal_prompts"`
	Ad_Show         bool           `json:"adShow" db:"ad_show"`
	Ad_Image_URL    *string        `json:"adImageUrl" db:"ad_image_url"`
	Ad_Video_URL    *string        `json:"adVideoUrl" db:"ad_video_url"`
	Ad_Link         *string        `json:"adLink" db:"ad_link"`
	Opens           int            `json:"opens" db:"opens" goqu:"skipinsert"`
	Prayers         int            `json:"prayers" db:"prayers" goqu:"skipinsert"`
	Created_By      int            `json:"createdBy" db:"created_by"`
	Updated_By      int            `json:"updatedBy" db:"updated_by"`
	Datetime_Create time.Time      `json:"datetimeCreate" db:"datetime_create" goqu:"skipinsert"`
	Datetime_Update time.Time      `json:"datetimeUpdate" db:"datetime_update" goqu:"skipinsert"`
}

// ContentAd is the optional sponsor block shown under the devotional.
type ContentAd struct {
	Show      bool    `json:"show"`
	Image_URL *string `json:"imageUrl"`
	Video_URL *string `json:"videoUrl"`
	Link      *string `json:"link"`
}

// ContentPayload is the admin-supplied body of a content save.
type ContentPayload struct {
	Verse_Text      string    `json:"verseText"`
	Verse_Reference string    `json:"verseReference"`
	Prayer          string    `json:"prayer"`
	Devotional      string    `json:"devotional"`
	Journal_Prompts []string  `json:"journalPrompts"`
	Ad              ContentAd `json:"ad"`
}

// ContentSave is the request body for PUT /admin/content/:date_key.
type ContentSave struct {
	ContentPayload
	Status       string `json:"status"`
	Publish_Date string `json:"publishDate"`
}

// ContentView is what end-user pages receive.
type ContentView struct {
	ContentRecord
	Devotional_HTML string `json:"devotionalHtml"`
}
