package controllers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/DailyBread/initializers"
	"github.com/DailyBread/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
)

// SetupTestDB creates a mock database and sets it as the global DB for testing
func SetupTestDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}

	goquDB := goqu.New("postgres", db)

	originalDB := initializers.DB
	initializers.DB = goquDB

	cleanup := func() {
		// Small delay to allow fire-and-forget goroutines (like open counters) to complete
		time.Sleep(10 * time.Millisecond)
		db.Close()
		initializers.DB = originalDB
	}

	return db, mock, cleanup
}

// SetupTestContext creates a test Gin context with a response recorder
func SetupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

// SetAuthenticatedUser sets the currentUser and admin values in the Gin context
// This simulates what the CheckAuth middleware does
func SetAuthenticatedUser(c *gin.Context, user models.UserProfile, isAdmin bool) {
	c.Set("currentUser", user)
	c.Set("admin", isAdmin)
}

// SetJSONBody attaches a JSON request body to the context
func SetJSONBody(c *gin.Context, method, target string, body interface{}) {
	payload, _ := json.Marshal(body)
	c.Request = httptest.NewRequest(method, target, bytes.NewReader(payload))
	c.Request.Header.Set("Content-Type", "application/json")
}

var contentColumns = []string{"date_key", "status", "publish_at", "devotional", "opens", "prayers", "datetime_update"}

var requestColumns = []string{
	"prayer_request_id", "author_id", "author_name", "content",
	"prayed_count", "comment_count", "is_flagged", "datetime_create",
}

// MockUserRows builds user_profile result rows for the given profiles
func MockUserRows(users ...models.UserProfile) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"user_profile_id", "username", "password", "email", "display_name",
		"admin", "suspended", "premium", "datetime_create", "datetime_update",
	})
	for _, u := range users {
		rows.AddRow(
			u.User_Profile_ID, u.Username, u.Password, u.Email, u.Display_Name,
			u.Admin, u.Suspended, u.Premium, u.Datetime_Create, u.Datetime_Update,
		)
	}
	return rows
}

// MockRequestRow builds a single community_prayer_request row
func MockRequestRow(authorID, prayed, comments int, flagged bool) *sqlmock.Rows {
	return sqlmock.NewRows(requestColumns).
		AddRow(testRequestID, authorID, "Test User", "Please pray for my family", prayed, comments, flagged, time.Now())
}
