package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/DailyBread/models"
)

// SweepResult summarises one auto-publish pass.
type SweepResult struct {
	Promoted []string `json:"promoted"`
	Failed   []string `json:"failed"`
}

// DueForPublish returns the scheduled records whose instant is at or before now.
func DueForPublish(records []models.ContentRecord, now time.Time) []models.ContentRecord {
	due := make([]models.ContentRecord, 0, len(records))
	for _, rec := range records {
		if rec.Status == models.ContentStatusScheduled && rec.Publish_At != nil && !rec.Publish_At.After(now) {
			due = append(due, rec)
		}
	}
	return due
}

// SweepScheduledContent promotes every overdue scheduled record to published.
// Each record is updated on its own; a failure is logged and the sweep moves on.
func (s *ContentService) SweepScheduledContent(ctx context.Context) (SweepResult, error) {
	result := SweepResult{Promoted: []string{}, Failed: []string{}}
	now := s.Now()

	var scheduled []models.ContentRecord
	err := s.DB.From(contentTable).
		Select("date_key", "status", "publish_at").
		Where(
			goqu.C("status").Eq(models.ContentStatusScheduled),
			goqu.C("publish_at").Lte(now),
		).
		ScanStructsContext(ctx, &scheduled)
	if err != nil {
		return result, fmt.Errorf("failed to list scheduled content: %w", err)
	}

	for _, rec := range DueForPublish(scheduled, now) {
		// The status guard keeps a concurrent re-save to draft from being overridden.
		update := s.DB.Update(contentTable).
			Set(goqu.Record{
				"status":          models.ContentStatusPublished,
				"publish_at":      nil,
				"datetime_update": goqu.L("NOW()"),
			}).
			Where(
				goqu.C("date_key").Eq(rec.Date_Key),
				goqu.C("status").Eq(models.ContentStatusScheduled),
			)

		res, err := update.Executor().ExecContext(ctx)
		if err != nil {
			log.Printf("Failed to auto-publish content %s: %v", rec.Date_Key, err)
			result.Failed = append(result.Failed, rec.Date_Key)
			continue
		}

		if rowsAffected, _ := res.RowsAffected(); rowsAffected == 0 {
			continue
		}
		result.Promoted = append(result.Promoted, rec.Date_Key)
	}

	if len(result.Promoted) > 0 || len(result.Failed) > 0 {
		log.Printf("Auto-publish sweep: %d promoted, %d failed", len(result.Promoted), len(result.Failed))
	}
	return result, nil
}

// Sweeper runs SweepScheduledContent on a fixed interval so publishing does
// not depend on an admin opening the dashboard.
type Sweeper struct {
	content  *ContentService
	interval time.Duration
	timeout  time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewSweeper(content *ContentService, interval, timeout time.Duration) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		content:  content,
		interval: interval,
		timeout:  timeout,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the sweep loop; the first pass runs immediately.
func (s *Sweeper) Start() {
	log.Printf("Starting auto-publish sweeper, interval: %v", s.interval)

	s.wg.Add(1)
	go s.loop()
}

// Stop cancels the loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	s.cancel()
	s.wg.Wait()
	log.Println("Auto-publish sweeper stopped")
}

func (s *Sweeper) loop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *Sweeper) runOnce() {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	if _, err := s.content.SweepScheduledContent(ctx); err != nil {
		log.Printf("Auto-publish sweep failed: %v", err)
	}
}
