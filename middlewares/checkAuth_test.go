package middlewares

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/DailyBread/initializers"
	"github.com/DailyBread/models"
	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
)

var userColumns = []string{
	"user_profile_id", "username", "email", "display_name", "password",
	"admin", "suspended", "premium", "datetime_create", "datetime_update",
}

// Helper function to generate a valid JWT token
func generateValidToken(userID int, role string, expiresIn time.Duration) string {
	secret := os.Getenv("SECRET")
	if secret == "" {
		secret = "test-secret-key"
		os.Setenv("SECRET", secret)
	}

	claims := jwt.MapClaims{
		"id":   float64(userID),
		"exp":  float64(time.Now().Add(expiresIn).Unix()),
		"role": role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(secret))
	return tokenString
}

// Helper function to generate an expired token
func generateExpiredToken(userID int) string {
	return generateValidToken(userID, "user", -1*time.Hour)
}

// Helper function to generate a token with invalid signature
func generateInvalidSignatureToken(userID int) string {
	claims := jwt.MapClaims{
		"id":   float64(userID),
		"exp":  float64(time.Now().Add(24 * time.Hour).Unix()),
		"role": "user",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte("wrong-secret-key"))
	return tokenString
}

// Helper function to generate a password reset token
func generateResetToken(userID int) string {
	generateValidToken(userID, "user", time.Hour)

	claims := jwt.MapClaims{
		"id":      float64(userID),
		"exp":     float64(time.Now().Add(10 * time.Minute).Unix()),
		"purpose": "password_reset",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(os.Getenv("SECRET")))
	return tokenString
}

// Setup test database
func setupTestDB(t *testing.T) (sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	goquDB := goqu.New("postgres", db)

	oldDB := initializers.DB
	initializers.DB = goquDB

	cleanup := func() {
		db.Close()
		initializers.DB = oldDB
	}

	return mock, cleanup
}

// Setup test Gin context
func setupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/test", nil)
	return c, w
}

func TestCheckAuth(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name              string
		authHeader        string
		userRows          *sqlmock.Rows
		expectedStatus    int
		expectAbort       bool
		expectCurrentUser bool
		expectedAdmin     bool
	}{
		{
			name:           "missing authorization header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectAbort:    true,
		},
		{
			name:           "invalid token format - no Bearer prefix",
			authHeader:     "InvalidToken123",
			expectedStatus: http.StatusUnauthorized,
			expectAbort:    true,
		},
		{
			name:           "invalid token format - wrong prefix",
			authHeader:     "Basic " + generateValidToken(1, "user", 24*time.Hour),
			expectedStatus: http.StatusUnauthorized,
			expectAbort:    true,
		},
		{
			name:           "invalid JWT signature",
			authHeader:     "Bearer " + generateInvalidSignatureToken(1),
			expectedStatus: http.StatusUnauthorized,
			expectAbort:    true,
		},
		{
			name:           "expired token",
			authHeader:     "Bearer " + generateExpiredToken(1),
			expectedStatus: http.StatusUnauthorized,
			expectAbort:    true,
		},
		{
			name:           "password reset token is not a session",
			authHeader:     "Bearer " + generateResetToken(1),
			expectedStatus: http.StatusUnauthorized,
			expectAbort:    true,
		},
		{
			name:           "valid token - user not found in database",
			authHeader:     "Bearer " + generateValidToken(999, "user", 24*time.Hour),
			userRows:       sqlmock.NewRows(userColumns),
			expectedStatus: http.StatusUnauthorized,
			expectAbort:    true,
		},
		{
			name:       "valid token - suspended user",
			authHeader: "Bearer " + generateValidToken(1, "user", 24*time.Hour),
			userRows: sqlmock.NewRows(userColumns).
				AddRow(1, "testuser", "test@example.com", "Test User", "hash", false, true, false, now, now),
			expectedStatus: http.StatusForbidden,
			expectAbort:    true,
		},
		{
			name:       "valid token - regular user",
			authHeader: "Bearer " + generateValidToken(1, "user", 24*time.Hour),
			userRows: sqlmock.NewRows(userColumns).
				AddRow(1, "testuser", "test@example.com", "Test User", "hash", false, false, false, now, now),
			expectedStatus:    http.StatusOK,
			expectCurrentUser: true,
			expectedAdmin:     false,
		},
		{
			name:       "valid token - admin user",
			authHeader: "Bearer " + generateValidToken(2, "admin", 24*time.Hour),
			userRows: sqlmock.NewRows(userColumns).
				AddRow(2, "adminuser", "admin@example.com", "Admin", "hash", true, false, false, now, now),
			expectedStatus:    http.StatusOK,
			expectCurrentUser: true,
			expectedAdmin:     true,
		},
		{
			name:       "stale admin claim after demotion",
			authHeader: "Bearer " + generateValidToken(2, "admin", 24*time.Hour),
			userRows: sqlmock.NewRows(userColumns).
				AddRow(2, "adminuser", "admin@example.com", "Admin", "hash", false, false, false, now, now),
			expectedStatus:    http.StatusOK,
			expectCurrentUser: true,
			expectedAdmin:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, cleanup := setupTestDB(t)
			defer cleanup()

			if tt.userRows != nil {
				mock.ExpectQuery(`SELECT .* FROM "user_profile"`).WillReturnRows(tt.userRows)
			}

			c, w := setupTestContext()

			if tt.authHeader != "" {
				c.Request.Header.Set("Authorization", tt.authHeader)
			}

			CheckAuth(c)

			if tt.expectAbort {
				assert.True(t, c.IsAborted(), "Expected request to be aborted")
				assert.Equal(t, tt.expectedStatus, w.Code)
			} else {
				assert.False(t, c.IsAborted(), "Expected request not to be aborted")
			}

			user, exists := c.Get("currentUser")
			assert.Equal(t, tt.expectCurrentUser, exists)

			if tt.expectCurrentUser {
				userProfile := user.(models.UserProfile)
				assert.NotZero(t, userProfile.User_Profile_ID)

				admin, exists := c.Get("admin")
				assert.True(t, exists, "Expected admin to be set")
				assert.Equal(t, tt.expectedAdmin, admin.(bool))
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestCheckAdmin(t *testing.T) {
	tests := []struct {
		name        string
		admin       bool
		expectAbort bool
	}{
		{"admin passes", true, false},
		{"member is refused", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := setupTestContext()
			c.Set("admin", tt.admin)

			CheckAdmin(c)

			assert.Equal(t, tt.expectAbort, c.IsAborted())
			if tt.expectAbort {
				assert.Equal(t, http.StatusForbidden, w.Code)
			}
		})
	}
}
