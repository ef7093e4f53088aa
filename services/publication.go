package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/lib/pq"

	"github.com/DailyBread/models"
)

const contentTable = "content_record"

// ContentService owns the content records and their publish lifecycle.
type ContentService struct {
	DB       *goqu.Database
	Now      func() time.Time
	Location *time.Location
}

// NewContentService returns a service anchored to loc (nil keeps 06:00 UTC).
func NewContentService(db *goqu.Database, loc *time.Location) *ContentService {
	return &ContentService{DB: db, Now: time.Now, Location: loc}
}

// ValidStatus reports whether status is one of the three publish states.
func ValidStatus(status string) bool {
	switch status {
	case models.ContentStatusDraft, models.ContentStatusScheduled, models.ContentStatusPublished:
		return true
	}
	return false
}

// ValidateAd enforces that a shown ad has media and a destination.
func ValidateAd(ad models.ContentAd) error {
	if !ad.Show {
		return nil
	}
	if isBlank(ad.Image_URL) && isBlank(ad.Video_URL) {
		return invalid("ad.imageUrl", "an ad image or video is required when the ad is shown")
	}
	if isBlank(ad.Link) {
		return invalid("ad.link", "an ad link is required when the ad is shown")
	}
	return nil
}

// ResolvePublishAt applies the transition rules for a save with the given
// status and returns the publish instant, which is set only for scheduled saves.
func ResolvePublishAt(status, publishDate string, now time.Time, loc *time.Location) (*time.Time, error) {
	if !ValidStatus(status) {
		return nil, invalid("status", fmt.Sprintf("unknown status %q", status))
	}
	if status != models.ContentStatusScheduled {
		return nil, nil
	}

	if publishDate == "" {
		return nil, invalid("publishDate", "a publish date is required to schedule content")
	}
	if _, err := ParseDateKey(publishDate); err != nil {
		return nil, invalid("publishDate", err.Error())
	}
	if publishDate < DateKey(now) {
		return nil, invalid("publishDate", "the publish date must be today or later")
	}

	at, err := PublishInstant(publishDate, loc)
	if err != nil {
		return nil, invalid("publishDate", err.Error())
	}
	return &at, nil
}

// BuildContentRecord validates a save and produces the full record to store.
// Nothing is written when it returns an error.
func BuildContentRecord(dateKey string, save models.ContentSave, actorID int, now time.Time, loc *time.Location) (models.ContentRecord, error) {
	if _, err := ParseDateKey(dateKey); err != nil {
		return models.ContentRecord{}, invalid("dateKey", err.Error())
	}
	if err := ValidateAd(save.Ad); err != nil {
		return models.ContentRecord{}, err
	}

	publishAt, err := ResolvePublishAt(save.Status, save.Publish_Date, now, loc)
	if err != nil {
		return models.ContentRecord{}, err
	}

	prompts := pq.StringArray{}
	for _, prompt := range save.Journal_Prompts {
		if prompt = strings.TrimSpace(prompt); prompt != "" {
			prompts = append(prompts, prompt)
		}
	}

	return models.ContentRecord{
		Date_Key:        dateKey,
		Status:          save.Status,
		Publish_At:      publishAt,
		Verse_Text:      save.Verse_Text,
		Verse_Reference: save.Verse_Reference,
		Prayer:          save.Prayer,
		Devotional:      save.Devotional,
		Journal_Prompts: prompts,
		Ad_Show:         save.Ad.Show,
		Ad_Image_URL:    save.Ad.Image_URL,
		Ad_Video_URL:    save.Ad.Video_URL,
		Ad_Link:         save.Ad.Link,
		Created_By:      actorID,
		Updated_By:      actorID,
	}, nil
}

// IsVisible reports whether end users may see rec at now. Scheduled content
// becomes visible once its instant has passed, even before a sweep promotes it.
func IsVisible(rec models.ContentRecord, now time.Time) bool {
	switch rec.Status {
	case models.ContentStatusPublished:
		return true
	case models.ContentStatusScheduled:
		return rec.Publish_At != nil && !rec.Publish_At.After(now)
	}
	return false
}

// UpsertContent fully overwrites the record for dateKey. Engagement counters
// and creation metadata survive a re-save; everything else is replaced.
func (s *ContentService) UpsertContent(ctx context.Context, actor models.UserProfile, dateKey string, save models.ContentSave) (models.ContentRecord, error) {
	if !actor.Admin {
		return models.ContentRecord{}, fmt.Errorf("saving content: %w", ErrUnauthorized)
	}

	rec, err := BuildContentRecord(dateKey, save, actor.User_Profile_ID, s.Now(), s.Location)
	if err != nil {
		return models.ContentRecord{}, err
	}

	insert := s.DB.Insert(contentTable).
		Rows(rec).
		OnConflict(goqu.DoUpdate("date_key", goqu.Record{
			"status":          rec.Status,
			"publish_at":      rec.Publish_At,
			"verse_text":      rec.Verse_Text,
			"verse_reference": rec.Verse_Reference,
			"prayer":          rec.Prayer,
			"devotional":      rec.Devotional,
			"journal_prompts": rec.Journal_Prompts,
			"ad_show":         rec.Ad_Show,
			"ad_image_url":    rec.Ad_Image_URL,
			"ad_video_url":    rec.Ad_Video_URL,
			"ad_link":         rec.Ad_Link,
			"updated_by":      actor.User_Profile_ID,
			"datetime_update": goqu.L("NOW()"),
		})).
		Returning(goqu.Star())

	// The stored row carries the surviving counters and original creator.
	var stored models.ContentRecord
	found, err := insert.Executor().ScanStructContext(ctx, &stored)
	if err != nil {
		return models.ContentRecord{}, fmt.Errorf("failed to save content %s: %w", dateKey, err)
	}
	if !found {
		return models.ContentRecord{}, fmt.Errorf("failed to save content %s: no row returned", dateKey)
	}

	log.Printf("Content %s saved as %s by user %d", dateKey, stored.Status, actor.User_Profile_ID)
	return stored, nil
}

// GetContentByDateKey reads the record for dateKey in any state.
func (s *ContentService) GetContentByDateKey(ctx context.Context, dateKey string) (models.ContentRecord, error) {
	var rec models.ContentRecord
	found, err := s.DB.From(contentTable).
		Where(goqu.C("date_key").Eq(dateKey)).
		ScanStructContext(ctx, &rec)
	if err != nil {
		return rec, fmt.Errorf("failed to fetch content %s: %w", dateKey, err)
	}
	if !found {
		return rec, fmt.Errorf("content %s: %w", dateKey, ErrNotFound)
	}
	return rec, nil
}

// GetVisibleContent is GetContentByDateKey as end users see it.
func (s *ContentService) GetVisibleContent(ctx context.Context, dateKey string) (models.ContentRecord, error) {
	rec, err := s.GetContentByDateKey(ctx, dateKey)
	if err != nil {
		return rec, err
	}
	if !IsVisible(rec, s.Now()) {
		return models.ContentRecord{}, fmt.Errorf("content %s: %w", dateKey, ErrNotFound)
	}
	return rec, nil
}

// GetLatestPublishedContent returns the published record with the greatest date key.
func (s *ContentService) GetLatestPublishedContent(ctx context.Context) (models.ContentRecord, error) {
	var rec models.ContentRecord
	found, err := s.DB.From(contentTable).
		Where(goqu.C("status").Eq(models.ContentStatusPublished)).
		Order(goqu.C("date_key").Desc()).
		ScanStructContext(ctx, &rec)
	if err != nil {
		return rec, fmt.Errorf("failed to fetch latest content: %w", err)
	}
	if !found {
		return rec, fmt.Errorf("latest content: %w", ErrNotFound)
	}
	return rec, nil
}

// GetTodayContent returns today's visible record, falling back to the latest
// published one when today has nothing to show.
func (s *ContentService) GetTodayContent(ctx context.Context) (models.ContentRecord, error) {
	rec, err := s.GetVisibleContent(ctx, DateKey(s.Now()))
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return rec, err
	}
	return s.GetLatestPublishedContent(ctx)
}

// ListAllContentWithStatus lists records newest first; filter is "all" or a status.
func (s *ContentService) ListAllContentWithStatus(ctx context.Context, filter string) ([]models.ContentRecord, error) {
	query := s.DB.From(contentTable).Order(goqu.C("date_key").Desc())

	switch {
	case filter == "" || filter == "all":
	case ValidStatus(filter):
		query = query.Where(goqu.C("status").Eq(filter))
	default:
		return nil, invalid("status", fmt.Sprintf("unknown filter %q", filter))
	}

	records := []models.ContentRecord{}
	if err := query.ScanStructsContext(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return records, nil
}

// DeleteContent hard deletes the record for dateKey.
func (s *ContentService) DeleteContent(ctx context.Context, actor models.UserProfile, dateKey string) error {
	if !actor.Admin {
		return fmt.Errorf("deleting content: %w", ErrUnauthorized)
	}

	result, err := s.DB.Delete(contentTable).
		Where(goqu.C("date_key").Eq(dateKey)).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete content %s: %w", dateKey, err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("content %s: %w", dateKey, ErrNotFound)
	}
	return nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
