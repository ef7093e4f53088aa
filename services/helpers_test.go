package services

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/require"

	"github.com/DailyBread/models"
)

const (
	testRequestID = "6f1c2b9e-3f44-4b7e-9a57-0c1d2e3f4a5b"
	testCommentID = "0b8e7d6c-5a4b-4c3d-8e2f-1a0b9c8d7e6f"
	testFlagID    = "d4c3b2a1-9f8e-4d7c-b6a5-4e3d2c1b0a99"
)

func newMockDB(t *testing.T) (*goqu.Database, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return goqu.New("postgres", db), mock
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func fixedID(id string) func() string {
	return func() string { return id }
}

func mockAdmin() models.UserProfile {
	return models.UserProfile{User_Profile_ID: 2, Username: "adminuser", Display_Name: "Admin", Admin: true}
}

func mockMember() models.UserProfile {
	return models.UserProfile{User_Profile_ID: 1, Username: "testuser", Display_Name: "Test User"}
}

var contentColumns = []string{"date_key", "status", "publish_at", "devotional", "opens", "prayers", "datetime_update"}

var storedContentColumns = []string{"date_key", "status", "publish_at", "devotional", "opens", "prayers", "created_by", "updated_by", "datetime_update"}

var requestColumns = []string{
	"prayer_request_id", "author_id", "author_name", "content",
	"prayed_count", "comment_count", "is_flagged", "datetime_create",
}

func requestRow(authorID, prayed, comments int, flagged bool) *sqlmock.Rows {
	return sqlmock.NewRows(requestColumns).
		AddRow(testRequestID, authorID, "Test User", "Please pray for my family", prayed, comments, flagged, time.Now())
}
