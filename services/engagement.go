package services

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/DailyBread/models"
)

// Pray records that userID prayed for a request. Praying again is a no-op: the
// interaction row is unique per user and the counter only moves when it is new.
func (s *CommunityService) Pray(ctx context.Context, requestID string, userID int) (models.PrayerToggleResult, error) {
	result := models.PrayerToggleResult{Prayed: true}

	err := withTx(ctx, s.DB, func(tx *goqu.TxDatabase) error {
		req, err := fetchPrayerRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if req.Is_Flagged {
			return fmt.Errorf("prayer request %s: %w", requestID, ErrNotFound)
		}

		created, err := trackPrayerInteraction(ctx, tx, requestID, userID)
		if err != nil {
			return err
		}
		if !created {
			result.Prayed_Count = req.Prayed_Count
			return nil
		}

		result.Prayed_Count, err = incrementPrayerCount(ctx, tx, requestID)
		return err
	})
	if err != nil {
		return models.PrayerToggleResult{}, err
	}
	return result, nil
}

// Unpray reverses Pray. Without a prior interaction nothing changes.
func (s *CommunityService) Unpray(ctx context.Context, requestID string, userID int) (models.PrayerToggleResult, error) {
	result := models.PrayerToggleResult{Prayed: false}

	err := withTx(ctx, s.DB, func(tx *goqu.TxDatabase) error {
		req, err := fetchPrayerRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}

		removed, err := removePrayerInteraction(ctx, tx, requestID, userID)
		if err != nil {
			return err
		}
		if !removed {
			result.Prayed_Count = req.Prayed_Count
			return nil
		}

		result.Prayed_Count, err = decrementPrayerCount(ctx, tx, requestID)
		return err
	})
	if err != nil {
		return models.PrayerToggleResult{}, err
	}
	return result, nil
}

// HasUserPrayed reports whether an interaction exists for (requestID, userID).
func (s *CommunityService) HasUserPrayed(ctx context.Context, requestID string, userID int) (bool, error) {
	if !validID(requestID) {
		return false, nil
	}

	count, err := s.DB.From(interactionTable).
		Where(
			goqu.C("prayer_request_id").Eq(requestID),
			goqu.C("user_profile_id").Eq(userID),
		).
		CountContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check prayer interaction: %w", err)
	}
	return count > 0, nil
}

// The single-step writes below are the building blocks of Pray and Unpray.
// They are exported for callers that already hold the pairing guarantee.

func (s *CommunityService) TrackPrayerInteraction(ctx context.Context, requestID string, userID int) (bool, error) {
	return trackPrayerInteraction(ctx, s.DB, requestID, userID)
}

func (s *CommunityService) RemovePrayerInteraction(ctx context.Context, requestID string, userID int) (bool, error) {
	return removePrayerInteraction(ctx, s.DB, requestID, userID)
}

func (s *CommunityService) IncrementPrayerCount(ctx context.Context, requestID string) (int, error) {
	return incrementPrayerCount(ctx, s.DB, requestID)
}

func (s *CommunityService) DecrementPrayerCount(ctx context.Context, requestID string) (int, error) {
	return decrementPrayerCount(ctx, s.DB, requestID)
}

func trackPrayerInteraction(ctx context.Context, q queryer, requestID string, userID int) (bool, error) {
	result, err := q.Insert(interactionTable).
		Rows(models.PrayerInteraction{Prayer_Request_ID: requestID, User_Profile_ID: userID}).
		OnConflict(goqu.DoNothing()).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to record prayer interaction: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	return rowsAffected == 1, nil
}

func removePrayerInteraction(ctx context.Context, q queryer, requestID string, userID int) (bool, error) {
	result, err := q.Delete(interactionTable).
		Where(
			goqu.C("prayer_request_id").Eq(requestID),
			goqu.C("user_profile_id").Eq(userID),
		).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to remove prayer interaction: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	return rowsAffected == 1, nil
}

func incrementPrayerCount(ctx context.Context, q queryer, requestID string) (int, error) {
	return adjustPrayerCount(ctx, q, requestID, "prayed_count + 1")
}

func decrementPrayerCount(ctx context.Context, q queryer, requestID string) (int, error) {
	return adjustPrayerCount(ctx, q, requestID, "GREATEST(prayed_count - 1, 0)")
}

func adjustPrayerCount(ctx context.Context, q queryer, requestID, expr string) (int, error) {
	var count int
	found, err := q.Update(requestTable).
		Set(goqu.Record{"prayed_count": goqu.L(expr)}).
		Where(goqu.C("prayer_request_id").Eq(requestID)).
		Returning("prayed_count").
		Executor().ScanValContext(ctx, &count)
	if err != nil {
		return 0, fmt.Errorf("failed to update prayer count: %w", err)
	}
	if !found {
		return 0, fmt.Errorf("prayer request %s: %w", requestID, ErrNotFound)
	}
	return count, nil
}

// RecordContentOpen counts one view of the devotional for dateKey.
func (s *ContentService) RecordContentOpen(ctx context.Context, dateKey string) error {
	_, err := s.bumpContentCounter(ctx, dateKey, "opens")
	return err
}

// RecordContentPrayer counts one "hold to pray" on the devotional for dateKey.
func (s *ContentService) RecordContentPrayer(ctx context.Context, dateKey string) (int, error) {
	return s.bumpContentCounter(ctx, dateKey, "prayers")
}

// bumpContentCounter only touches records end users can see. Drafts and
// scheduled records whose instant has not passed read as ErrNotFound.
func (s *ContentService) bumpContentCounter(ctx context.Context, dateKey, column string) (int, error) {
	var count int
	found, err := s.DB.Update(contentTable).
		Set(goqu.Record{column: goqu.L(column + " + 1")}).
		Where(
			goqu.C("date_key").Eq(dateKey),
			goqu.Or(
				goqu.C("status").Eq(models.ContentStatusPublished),
				goqu.And(
					goqu.C("status").Eq(models.ContentStatusScheduled),
					goqu.C("publish_at").Lte(s.Now()),
				),
			),
		).
		Returning(column).
		Executor().ScanValContext(ctx, &count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s for %s: %w", column, dateKey, err)
	}
	if !found {
		return 0, fmt.Errorf("content %s: %w", dateKey, ErrNotFound)
	}
	return count, nil
}
