package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DailyBread/models"
)

func strPtr(s string) *string { return &s }

func TestValidateAd(t *testing.T) {
	tests := []struct {
		name      string
		ad        models.ContentAd
		wantField string
	}{
		{"hidden ad is not validated", models.ContentAd{Show: false}, ""},
		{"shown ad without media", models.ContentAd{Show: true, Link: strPtr("https://example.com")}, "ad.imageUrl"},
		{"shown ad with blank media", models.ContentAd{Show: true, Image_URL: strPtr("  "), Link: strPtr("https://example.com")}, "ad.imageUrl"},
		{"shown ad with image but no link", models.ContentAd{Show: true, Image_URL: strPtr("https://cdn.example.com/a.png")}, "ad.link"},
		{"shown ad with video and link", models.ContentAd{Show: true, Video_URL: strPtr("https://cdn.example.com/a.mp4"), Link: strPtr("https://example.com")}, ""},
		{"shown ad with image and link", models.ContentAd{Show: true, Image_URL: strPtr("https://cdn.example.com/a.png"), Link: strPtr("https://example.com")}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAd(tt.ad)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestResolvePublishAt(t *testing.T) {
	now := time.Date(2025, 5, 20, 15, 30, 0, 0, time.UTC)

	tests := []struct {
		name        string
		status      string
		publishDate string
		want        *time.Time
		wantErr     bool
	}{
		{"publish now clears instant", models.ContentStatusPublished, "2025-06-01", nil, false},
		{"draft has no instant", models.ContentStatusDraft, "", nil, false},
		{"schedule for a future date", models.ContentStatusScheduled, "2025-06-01", timePtr(time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)), false},
		{"schedule for today", models.ContentStatusScheduled, "2025-05-20", timePtr(time.Date(2025, 5, 20, 6, 0, 0, 0, time.UTC)), false},
		{"schedule in the past", models.ContentStatusScheduled, "2025-05-19", nil, true},
		{"schedule without a date", models.ContentStatusScheduled, "", nil, true},
		{"schedule with malformed date", models.ContentStatusScheduled, "June 1", nil, true},
		{"unknown status", "archived", "", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePublishAt(tt.status, tt.publishDate, now, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestBuildContentRecord(t *testing.T) {
	now := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)
	save := models.ContentSave{
		ContentPayload: models.ContentPayload{
			Verse_Text:      "Be still, and know that I am God.",
			Verse_Reference: "Psalm 46:10",
			Devotional:      "Rest today.",
			Journal_Prompts: []string{"Where do you need stillness?", "  ", "What are you carrying?"},
		},
		Status:       models.ContentStatusScheduled,
		Publish_Date: "2025-06-01",
	}

	rec, err := BuildContentRecord("2025-06-01", save, 2, now, nil)
	require.NoError(t, err)

	assert.Equal(t, "2025-06-01", rec.Date_Key)
	assert.Equal(t, models.ContentStatusScheduled, rec.Status)
	require.NotNil(t, rec.Publish_At)
	assert.Equal(t, time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC), *rec.Publish_At)
	assert.Equal(t, []string{"Where do you need stillness?", "What are you carrying?"}, []string(rec.Journal_Prompts))
	assert.Equal(t, 2, rec.Updated_By)

	t.Run("rejects a malformed date key", func(t *testing.T) {
		_, err := BuildContentRecord("2025-6-1", save, 2, now, nil)
		assert.ErrorIs(t, err, ErrValidation)
	})

	t.Run("ad gate applies regardless of status", func(t *testing.T) {
		draft := save
		draft.Status = models.ContentStatusDraft
		draft.Ad = models.ContentAd{Show: true, Image_URL: strPtr("https://cdn.example.com/a.png")}

		_, err := BuildContentRecord("2025-06-01", draft, 2, now, nil)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "ad.link", verr.Field)
	})
}

func TestIsVisible(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, IsVisible(models.ContentRecord{Status: models.ContentStatusPublished}, now))
	assert.False(t, IsVisible(models.ContentRecord{Status: models.ContentStatusDraft}, now))
	assert.True(t, IsVisible(models.ContentRecord{Status: models.ContentStatusScheduled, Publish_At: &past}, now))
	assert.True(t, IsVisible(models.ContentRecord{Status: models.ContentStatusScheduled, Publish_At: &now}, now))
	assert.False(t, IsVisible(models.ContentRecord{Status: models.ContentStatusScheduled, Publish_At: &future}, now))
	assert.False(t, IsVisible(models.ContentRecord{Status: models.ContentStatusScheduled}, now))
}

func newTestContentService(t *testing.T, now time.Time) (*ContentService, sqlmock.Sqlmock) {
	db, mock := newMockDB(t)
	svc := NewContentService(db, nil)
	svc.Now = fixedClock(now)
	return svc, mock
}

func TestUpsertContent(t *testing.T) {
	now := time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

	t.Run("scheduled save upserts by date key", func(t *testing.T) {
		svc, mock := newTestContentService(t, now)
		publishAt := time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC)
		mock.ExpectQuery(`INSERT INTO "content_record" .*'scheduled'.* ON CONFLICT .*DO UPDATE SET .* RETURNING \*`).
			WillReturnRows(sqlmock.NewRows(storedContentColumns).AddRow("2025-06-01", "scheduled", publishAt, "", 0, 0, 1, 1, now))

		rec, err := svc.UpsertContent(context.Background(), mockAdmin(), "2025-06-01", models.ContentSave{
			Status:       models.ContentStatusScheduled,
			Publish_Date: "2025-06-01",
		})
		require.NoError(t, err)
		assert.Equal(t, publishAt, *rec.Publish_At)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second save for the same date is an overwrite, not a new row", func(t *testing.T) {
		svc, mock := newTestContentService(t, now)
		mock.ExpectQuery(`INSERT INTO "content_record" .*'draft'.* ON CONFLICT .*DO UPDATE SET`).
			WillReturnRows(sqlmock.NewRows(storedContentColumns).AddRow("2025-06-01", "draft", nil, "", 0, 0, 1, 1, now))
		mock.ExpectQuery(`INSERT INTO "content_record" .*'published'.* ON CONFLICT .*DO UPDATE SET .*"status"='published'`).
			WillReturnRows(sqlmock.NewRows(storedContentColumns).AddRow("2025-06-01", "published", nil, "", 0, 0, 1, 1, now))

		_, err := svc.UpsertContent(context.Background(), mockAdmin(), "2025-06-01", models.ContentSave{Status: models.ContentStatusDraft})
		require.NoError(t, err)
		rec, err := svc.UpsertContent(context.Background(), mockAdmin(), "2025-06-01", models.ContentSave{Status: models.ContentStatusPublished})
		require.NoError(t, err)

		assert.Equal(t, models.ContentStatusPublished, rec.Status)
		assert.Nil(t, rec.Publish_At)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("re-save returns the stored counters and creator", func(t *testing.T) {
		svc, mock := newTestContentService(t, now)
		updatedAt := now.Add(-time.Minute)
		mock.ExpectQuery(`INSERT INTO "content_record" .* ON CONFLICT .*DO UPDATE SET .*"updated_by"=2.* RETURNING \*`).
			WillReturnRows(sqlmock.NewRows(storedContentColumns).AddRow("2025-06-01", "published", nil, "Edited", 40, 7, 1, 2, updatedAt))

		rec, err := svc.UpsertContent(context.Background(), mockAdmin(), "2025-06-01", models.ContentSave{
			ContentPayload: models.ContentPayload{Devotional: "Edited"},
			Status:         models.ContentStatusPublished,
		})
		require.NoError(t, err)
		assert.Equal(t, 40, rec.Opens)
		assert.Equal(t, 7, rec.Prayers)
		assert.Equal(t, 1, rec.Created_By)
		assert.Equal(t, 2, rec.Updated_By)
		assert.Equal(t, updatedAt, rec.Datetime_Update)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("past schedule date writes nothing", func(t *testing.T) {
		svc, mock := newTestContentService(t, now)

		_, err := svc.UpsertContent(context.Background(), mockAdmin(), "2025-05-01", models.ContentSave{
			Status:       models.ContentStatusScheduled,
			Publish_Date: "2025-05-19",
		})
		assert.ErrorIs(t, err, ErrValidation)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-admin is refused before validation", func(t *testing.T) {
		svc, mock := newTestContentService(t, now)

		_, err := svc.UpsertContent(context.Background(), mockMember(), "2025-06-01", models.ContentSave{Status: models.ContentStatusPublished})
		assert.ErrorIs(t, err, ErrUnauthorized)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDraftThenPublishScenario(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()
	svc, mock := newTestContentService(t, now)

	// Saved as draft: readable by key, absent from the latest-published query.
	mock.ExpectQuery(`INSERT INTO "content_record"`).
		WillReturnRows(sqlmock.NewRows(storedContentColumns).AddRow("2025-06-01", "draft", nil, "", 0, 0, 1, 1, now))
	mock.ExpectQuery(`SELECT .* FROM "content_record" WHERE \("date_key" = '2025-06-01'\)`).
		WillReturnRows(sqlmock.NewRows(contentColumns).AddRow("2025-06-01", "draft", nil, "Draft body", 0, 0, now))
	mock.ExpectQuery(`SELECT .* FROM "content_record" WHERE \("status" = 'published'\) ORDER BY "date_key" DESC`).
		WillReturnRows(sqlmock.NewRows(contentColumns))

	_, err := svc.UpsertContent(ctx, mockAdmin(), "2025-06-01", models.ContentSave{Status: models.ContentStatusDraft})
	require.NoError(t, err)

	rec, err := svc.GetContentByDateKey(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, models.ContentStatusDraft, rec.Status)

	_, err = svc.GetLatestPublishedContent(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	// Re-saved as published: both reads return it.
	mock.ExpectQuery(`INSERT INTO "content_record"`).
		WillReturnRows(sqlmock.NewRows(storedContentColumns).AddRow("2025-06-01", "published", nil, "Final body", 0, 0, 1, 1, now))
	mock.ExpectQuery(`SELECT .* FROM "content_record" WHERE \("date_key" = '2025-06-01'\)`).
		WillReturnRows(sqlmock.NewRows(contentColumns).AddRow("2025-06-01", "published", nil, "Final body", 0, 0, now))
	mock.ExpectQuery(`SELECT .* FROM "content_record" WHERE \("status" = 'published'\) ORDER BY "date_key" DESC`).
		WillReturnRows(sqlmock.NewRows(contentColumns).AddRow("2025-06-01", "published", nil, "Final body", 0, 0, now))

	_, err = svc.UpsertContent(ctx, mockAdmin(), "2025-06-01", models.ContentSave{
		ContentPayload: models.ContentPayload{Devotional: "Final body"},
		Status:         models.ContentStatusPublished,
	})
	require.NoError(t, err)

	rec, err = svc.GetContentByDateKey(ctx, "2025-06-01")
	require.NoError(t, err)
	assert.Equal(t, "Final body", rec.Devotional)

	latest, err := svc.GetLatestPublishedContent(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2025-06-01", latest.Date_Key)
	assert.Equal(t, models.ContentStatusPublished, latest.Status)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTodayContent(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("today's published record", func(t *testing.T) {
		svc, mock := newTestContentService(t, now)
		mock.ExpectQuery(`"date_key" = '2025-06-02'`).
			WillReturnRows(sqlmock.NewRows(contentColumns).AddRow("2025-06-02", "published", nil, "", 3, 1, now))

		rec, err := svc.GetTodayContent(ctx)
		require.NoError(t, err)
		assert.Equal(t, "2025-06-02", rec.Date_Key)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("draft today falls back to latest published", func(t *testing.T) {
		svc, mock := newTestContentService(t, now)
		mock.ExpectQuery(`"date_key" = '2025-06-02'`).
			WillReturnRows(sqlmock.NewRows(contentColumns).AddRow("2025-06-02", "draft", nil, "", 0, 0, now))
		mock.ExpectQuery(`"status" = 'published'`).
			WillReturnRows(sqlmock.NewRows(contentColumns).AddRow("2025-05-30", "published", nil, "", 9, 4, now))

		rec, err := svc.GetTodayContent(ctx)
		require.NoError(t, err)
		assert.Equal(t, "2025-05-30", rec.Date_Key)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("scheduled but not yet due is invisible", func(t *testing.T) {
		svc, mock := newTestContentService(t, now)
		later := now.Add(2 * time.Hour)
		mock.ExpectQuery(`"date_key" = '2025-06-02'`).
			WillReturnRows(sqlmock.NewRows(contentColumns).AddRow("2025-06-02", "scheduled", later, "", 0, 0, now))
		mock.ExpectQuery(`"status" = 'published'`).
			WillReturnRows(sqlmock.NewRows(contentColumns))

		_, err := svc.GetTodayContent(ctx)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListAllContentWithStatus(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	ctx := context.Background()

	t.Run("all", func(t *testing.T) {
		svc, mock := newTestContentService(t, now)
		mock.ExpectQuery(`SELECT .* FROM "content_record" ORDER BY "date_key" DESC`).
			WillReturnRows(sqlmock.NewRows(contentColumns).
				AddRow("2025-06-03", "scheduled", now.Add(18*time.Hour), "", 0, 0, now).
				AddRow("2025-06-02", "published", nil, "", 0, 0, now))

		records, err := svc.ListAllContentWithStatus(ctx, "all")
		require.NoError(t, err)
		assert.Len(t, records, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("single status", func(t *testing.T) {
		svc, mock := newTestContentService(t, now)
		mock.ExpectQuery(`WHERE \("status" = 'draft'\)`).WillReturnRows(sqlmock.NewRows(contentColumns))

		records, err := svc.ListAllContentWithStatus(ctx, "draft")
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown filter", func(t *testing.T) {
		svc, _ := newTestContentService(t, now)
		_, err := svc.ListAllContentWithStatus(ctx, "archived")
		assert.ErrorIs(t, err, ErrValidation)
	})
}

func TestDeleteContent(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("deletes", func(t *testing.T) {
		svc, mock := newTestContentService(t, now)
		mock.ExpectExec(`DELETE FROM "content_record"`).WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, svc.DeleteContent(ctx, mockAdmin(), "2025-06-01"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing record", func(t *testing.T) {
		svc, mock := newTestContentService(t, now)
		mock.ExpectExec(`DELETE FROM "content_record"`).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, svc.DeleteContent(ctx, mockAdmin(), "2025-06-01"), ErrNotFound)
	})

	t.Run("members cannot delete", func(t *testing.T) {
		svc, _ := newTestContentService(t, now)
		assert.ErrorIs(t, svc.DeleteContent(ctx, mockMember(), "2025-06-01"), ErrUnauthorized)
	})
}

func TestContentCounters(t *testing.T) {
	ctx := context.Background()
	visible := `WHERE \(\("date_key" = '2025-06-01'\) AND \(\("status" = 'published'\) OR \(\("status" = 'scheduled'\) AND \("publish_at" <= '.*'\)\)\)\)`

	t.Run("counts on visible content", func(t *testing.T) {
		svc, mock := newTestContentService(t, time.Now())

		mock.ExpectQuery(`UPDATE "content_record" SET "opens"=opens \+ 1 ` + visible + ` RETURNING "opens"`).
			WillReturnRows(sqlmock.NewRows([]string{"opens"}).AddRow(11))
		mock.ExpectQuery(`UPDATE "content_record" SET "prayers"=prayers \+ 1 ` + visible + ` RETURNING "prayers"`).
			WillReturnRows(sqlmock.NewRows([]string{"prayers"}).AddRow(4))

		assert.NoError(t, svc.RecordContentOpen(ctx, "2025-06-01"))

		prayers, err := svc.RecordContentPrayer(ctx, "2025-06-01")
		require.NoError(t, err)
		assert.Equal(t, 4, prayers)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	// A draft or a future scheduled record matches no row, same as a missing date.
	tests := []struct {
		name    string
		dateKey string
	}{
		{"draft", "2099-01-01"},
		{"scheduled in the future", "2099-01-02"},
		{"no record", "1999-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := newTestContentService(t, time.Now())

			mock.ExpectQuery(`UPDATE "content_record" SET "prayers"=prayers \+ 1 WHERE .*"status" = 'published'`).
				WillReturnRows(sqlmock.NewRows([]string{"prayers"}))
			mock.ExpectQuery(`UPDATE "content_record" SET "opens"=opens \+ 1 WHERE .*"status" = 'published'`).
				WillReturnRows(sqlmock.NewRows([]string{"opens"}))

			prayers, err := svc.RecordContentPrayer(ctx, tt.dateKey)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.Zero(t, prayers)
			assert.ErrorIs(t, svc.RecordContentOpen(ctx, tt.dateKey), ErrNotFound)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
