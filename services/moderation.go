package services

import (
	"context"
	"fmt"
	"log"

	"github.com/doug-martin/goqu/v9"

	"github.com/DailyBread/models"
)

// ModerationAlerter is told about every request that enters the queue.
type ModerationAlerter interface {
	SendModerationAlert(entry models.FlaggedEntry, req models.CommunityPrayerRequest) error
}

// ModerationService moves requests between visible and quarantined.
type ModerationService struct {
	DB     *goqu.Database
	Alerts ModerationAlerter
	NewID  func() string
}

func NewModerationService(db *goqu.Database, alerts ModerationAlerter) *ModerationService {
	return &ModerationService{DB: db, Alerts: alerts, NewID: newID}
}

// ValidFlagReason reports whether reason is one of the fixed flag reasons.
func ValidFlagReason(reason string) bool {
	for _, r := range models.FlagReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// FlagPrayerRequest quarantines a visible request and opens a queue ticket for
// it. The first flag wins; flagging a quarantined request is a conflict.
func (s *ModerationService) FlagPrayerRequest(ctx context.Context, requestID string, reporterID int, reason string) (models.FlaggedEntry, error) {
	if !ValidFlagReason(reason) {
		return models.FlaggedEntry{}, invalid("reason", fmt.Sprintf("unknown flag reason %q", reason))
	}

	entry := models.FlaggedEntry{
		Flag_ID:             s.NewID(),
		Original_Request_ID: requestID,
		Reporter_ID:         reporterID,
		Reason:              reason,
	}

	var req models.CommunityPrayerRequest
	err := withTx(ctx, s.DB, func(tx *goqu.TxDatabase) error {
		var err error
		req, err = fetchPrayerRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}

		result, err := tx.Update(requestTable).
			Set(goqu.Record{"is_flagged": true}).
			Where(
				goqu.C("prayer_request_id").Eq(requestID),
				goqu.C("is_flagged").IsFalse(),
			).
			Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to quarantine prayer request %s: %w", requestID, err)
		}
		if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
			return fmt.Errorf("prayer request %s is already in the moderation queue: %w", requestID, ErrConflict)
		}

		insert := tx.Insert(flagTable).Rows(entry).Returning("datetime_create")
		if _, err := insert.Executor().ScanValContext(ctx, &entry.Datetime_Create); err != nil {
			return fmt.Errorf("failed to create flagged entry: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.FlaggedEntry{}, err
	}

	log.Printf("Prayer request %s flagged by user %d (%s)", requestID, reporterID, reason)

	if s.Alerts != nil {
		go func(entry models.FlaggedEntry, req models.CommunityPrayerRequest) {
			if err := s.Alerts.SendModerationAlert(entry, req); err != nil {
				log.Printf("Failed to send moderation alert for %s: %v", entry.Flag_ID, err)
			}
		}(entry, req)
	}

	return entry, nil
}

// ListFlagged returns the moderation queue, oldest ticket first.
func (s *ModerationService) ListFlagged(ctx context.Context, actor models.UserProfile) ([]models.FlaggedEntryWithRequest, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("listing moderation queue: %w", ErrUnauthorized)
	}

	entries := []models.FlaggedEntryWithRequest{}
	err := s.DB.From(goqu.T(flagTable).As("f")).
		Select(
			goqu.I("f.flag_id"),
			goqu.I("f.original_request_id"),
			goqu.I("f.reporter_id"),
			goqu.I("f.reason"),
			goqu.I("f.datetime_create"),
			goqu.I("r.content"),
			goqu.I("r.author_id"),
			goqu.I("r.author_name"),
			goqu.I("r.author_photo"),
			goqu.I("r.prayed_count"),
			goqu.I("r.comment_count"),
		).
		Join(
			goqu.T(requestTable).As("r"),
			goqu.On(goqu.I("f.original_request_id").Eq(goqu.I("r.prayer_request_id"))),
		).
		Order(goqu.I("f.datetime_create").Asc()).
		ScanStructsContext(ctx, &entries)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch moderation queue: %w", err)
	}
	return entries, nil
}

// ApproveFlagged closes the ticket and puts the request back in the feed unchanged.
func (s *ModerationService) ApproveFlagged(ctx context.Context, actor models.UserProfile, flagID string) (models.FlaggedEntry, error) {
	if !actor.Admin {
		return models.FlaggedEntry{}, fmt.Errorf("approving flagged request: %w", ErrUnauthorized)
	}

	var entry models.FlaggedEntry
	err := withTx(ctx, s.DB, func(tx *goqu.TxDatabase) error {
		var err error
		if entry, err = takeFlaggedEntry(ctx, tx, flagID); err != nil {
			return err
		}

		_, err = tx.Update(requestTable).
			Set(goqu.Record{"is_flagged": false}).
			Where(goqu.C("prayer_request_id").Eq(entry.Original_Request_ID)).
			Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to restore prayer request %s: %w", entry.Original_Request_ID, err)
		}
		return nil
	})
	if err != nil {
		return models.FlaggedEntry{}, err
	}

	log.Printf("Flag %s approved by user %d, request %s restored", flagID, actor.User_Profile_ID, entry.Original_Request_ID)
	return entry, nil
}

// RejectFlagged closes the ticket and permanently deletes the request.
func (s *ModerationService) RejectFlagged(ctx context.Context, actor models.UserProfile, flagID string) (models.FlaggedEntry, error) {
	if !actor.Admin {
		return models.FlaggedEntry{}, fmt.Errorf("rejecting flagged request: %w", ErrUnauthorized)
	}

	var entry models.FlaggedEntry
	err := withTx(ctx, s.DB, func(tx *goqu.TxDatabase) error {
		var err error
		if entry, err = takeFlaggedEntry(ctx, tx, flagID); err != nil {
			return err
		}
		return deletePrayerRequestCascade(ctx, tx, entry.Original_Request_ID)
	})
	if err != nil {
		return models.FlaggedEntry{}, err
	}

	log.Printf("Flag %s rejected by user %d, request %s deleted", flagID, actor.User_Profile_ID, entry.Original_Request_ID)
	return entry, nil
}

// takeFlaggedEntry reads and deletes a queue ticket.
func takeFlaggedEntry(ctx context.Context, q queryer, flagID string) (models.FlaggedEntry, error) {
	var entry models.FlaggedEntry
	if !validID(flagID) {
		return entry, fmt.Errorf("flagged entry %s: %w", flagID, ErrNotFound)
	}

	found, err := q.From(flagTable).
		Where(goqu.C("flag_id").Eq(flagID)).
		ScanStructContext(ctx, &entry)
	if err != nil {
		return entry, fmt.Errorf("failed to fetch flagged entry %s: %w", flagID, err)
	}
	if !found {
		return entry, fmt.Errorf("flagged entry %s: %w", flagID, ErrNotFound)
	}

	result, err := q.Delete(flagTable).
		Where(goqu.C("flag_id").Eq(flagID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return entry, fmt.Errorf("failed to delete flagged entry %s: %w", flagID, err)
	}
	// Another admin resolved it after our read.
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return entry, fmt.Errorf("flagged entry %s: %w", flagID, ErrNotFound)
	}
	return entry, nil
}
