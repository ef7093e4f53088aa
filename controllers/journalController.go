package controllers

import (
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/doug-martin/goqu/v9"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DailyBread/initializers"
	"github.com/DailyBread/models"
	"github.com/DailyBread/services"
)

const maxJournalBodyLength = 5000

// GetJournalEntries lists the current user's entries, newest day first.
// An optional ?dateKey= narrows it to one day.
// GET /journal
func GetJournalEntries(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	query := initializers.DB.From("journal_entry").
		Where(goqu.C("user_profile_id").Eq(currentUser.User_Profile_ID)).
		Order(goqu.C("date_key").Desc(), goqu.C("datetime_create").Desc())

	if dateKey := c.Query("dateKey"); dateKey != "" {
		if _, err := services.ParseDateKey(dateKey); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date", "details": err.Error()})
			return
		}
		query = query.Where(goqu.C("date_key").Eq(dateKey))
	}

	entries := []models.JournalEntry{}
	if err := query.ScanStructsContext(c.Request.Context(), &entries); err != nil {
		log.Printf("Failed to fetch journal entries: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch journal entries", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// POST /journal
func CreateJournalEntry(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)

	var body models.JournalEntryCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	text, ok := validJournalBody(c, body.Body)
	if !ok {
		return
	}

	dateKey := body.Date_Key
	if dateKey == "" {
		dateKey = services.DateKey(time.Now())
	} else if _, err := services.ParseDateKey(dateKey); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date", "field": "dateKey", "details": err.Error()})
		return
	}

	entry := models.JournalEntry{
		Journal_Entry_ID: uuid.NewString(),
		User_Profile_ID:  currentUser.User_Profile_ID,
		Date_Key:         dateKey,
		Prompt:           body.Prompt,
		Body:             text,
	}

	insert := initializers.DB.Insert("journal_entry").
		Rows(entry).
		Returning("datetime_create")

	if _, err := insert.Executor().ScanValContext(c.Request.Context(), &entry.Datetime_Create); err != nil {
		log.Printf("Failed to create journal entry: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save journal entry", "details": err.Error()})
		return
	}
	entry.Datetime_Update = entry.Datetime_Create

	c.JSON(http.StatusCreated, gin.H{
		"message": "Journal entry saved",
		"entry":   entry,
	})
}

// PUT /journal/:entry_id
func UpdateJournalEntry(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)
	entryID := c.Param("entry_id")

	if _, err := uuid.Parse(entryID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		return
	}

	var body models.JournalEntryCreate
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	text, ok := validJournalBody(c, body.Body)
	if !ok {
		return
	}

	result, err := initializers.DB.Update("journal_entry").
		Set(goqu.Record{
			"body":            text,
			"prompt":          body.Prompt,
			"datetime_update": goqu.L("NOW()"),
		}).
		Where(
			goqu.C("journal_entry_id").Eq(entryID),
			goqu.C("user_profile_id").Eq(currentUser.User_Profile_ID),
		).
		Executor().ExecContext(c.Request.Context())
	if err != nil {
		log.Printf("Failed to update journal entry %s: %v", entryID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update journal entry", "details": err.Error()})
		return
	}

	// Someone else's entry looks exactly like a missing one.
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Journal entry not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Journal entry updated"})
}

// DELETE /journal/:entry_id
func DeleteJournalEntry(c *gin.Context) {
	currentUser := c.MustGet("currentUser").(models.UserProfile)
	entryID := c.Param("entry_id")

	if _, err := uuid.Parse(entryID); err != nil {
		c.JSON(http.StatusOK, gin.H{"message": "Journal entry deleted"})
		return
	}

	result, err := initializers.DB.Delete("journal_entry").
		Where(
			goqu.C("journal_entry_id").Eq(entryID),
			goqu.C("user_profile_id").Eq(currentUser.User_Profile_ID),
		).
		Executor().ExecContext(c.Request.Context())
	if err != nil {
		log.Printf("Failed to delete journal entry %s: %v", entryID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete journal entry", "details": err.Error()})
		return
	}

	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		log.Printf("Delete of journal entry %s ignored: no such entry for user %d", entryID, currentUser.User_Profile_ID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Journal entry deleted"})
}

func validJournalBody(c *gin.Context, body string) (string, bool) {
	text := strings.TrimSpace(body)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A journal entry cannot be empty", "field": "body"})
		return "", false
	}
	if utf8.RuneCountInString(text) > maxJournalBodyLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A journal entry must be at most 5000 characters", "field": "body"})
		return "", false
	}
	return text, true
}
