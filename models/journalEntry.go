package models

import "time"

type JournalEntry struct {
	Journal_Entry_ID string    `json:"journalEntryId" db:"journal_entry_id"`
	User_Profile_ID  int       `json:"userProfileId" db:"user_profile_id"`
	Date_Key         string    `json:"dateKey" db:"date_key"`
	Prompt           *string   `json:"prompt" db:"prompt"`
	Body             string    `json:"body" db:"body"`
	Datetime_Create  time.Time `json:"datetimeCreate" db:"datetime_create" goqu:"skipinsert"`
	Datetime_Update  time.Time `json:"datetimeUpdate" db:"datetime_update" goqu:"skipinsert"`
}

type JournalEntryCreate struct {
	Date_Key string  `json:"dateKey"`
	Prompt   *string `json:"prompt"`
	Body     string  `json:"body"`
}
