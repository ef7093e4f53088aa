package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/doug-martin/goqu/v9"

	"github.com/DailyBread/models"
)

const (
	requestTable     = "community_prayer_request"
	interactionTable = "prayer_interaction"
	commentTable     = "prayer_comment"
	flagTable        = "flagged_entry"

	maxRequestLength = 1000
	maxCommentLength = 500
)

// CommunityService owns the prayer request feed and everything hanging off a request.
type CommunityService struct {
	DB    *goqu.Database
	NewID func() string
}

func NewCommunityService(db *goqu.Database) *CommunityService {
	return &CommunityService{DB: db, NewID: newID}
}

// CreatePrayerRequest posts a request with a snapshot of the author's profile.
func (s *CommunityService) CreatePrayerRequest(ctx context.Context, author models.UserProfile, content string) (models.CommunityPrayerRequest, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.CommunityPrayerRequest{}, invalid("content", "a prayer request cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxRequestLength {
		return models.CommunityPrayerRequest{}, invalid("content", fmt.Sprintf("must be at most %d characters", maxRequestLength))
	}

	req := models.CommunityPrayerRequest{
		Prayer_Request_ID: s.NewID(),
		Author_ID:         author.User_Profile_ID,
		Author_Name:       authorName(author),
		Author_Photo:      author.Photo_URL,
		Content:           content,
	}

	insert := s.DB.Insert(requestTable).
		Rows(req).
		Returning("datetime_create")

	if _, err := insert.Executor().ScanValContext(ctx, &req.Datetime_Create); err != nil {
		return models.CommunityPrayerRequest{}, fmt.Errorf("failed to create prayer request: %w", err)
	}
	return req, nil
}

// GetPrayerRequest returns a request. Quarantined requests are only shown to
// admins and their author.
func (s *CommunityService) GetPrayerRequest(ctx context.Context, id string, viewer models.UserProfile) (models.CommunityPrayerRequest, error) {
	req, err := fetchPrayerRequest(ctx, s.DB, id)
	if err != nil {
		return req, err
	}
	if req.Is_Flagged && !viewer.Admin && viewer.User_Profile_ID != req.Author_ID {
		return models.CommunityPrayerRequest{}, fmt.Errorf("prayer request %s: %w", id, ErrNotFound)
	}
	return req, nil
}

// ListFeed returns visible requests, newest first.
func (s *CommunityService) ListFeed(ctx context.Context, limit, offset uint) ([]models.CommunityPrayerRequest, error) {
	requests := []models.CommunityPrayerRequest{}
	err := s.DB.From(requestTable).
		Where(goqu.C("is_flagged").IsFalse()).
		Order(goqu.C("datetime_create").Desc()).
		Limit(limit).
		Offset(offset).
		ScanStructsContext(ctx, &requests)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prayer feed: %w", err)
	}
	return requests, nil
}

// DeletePrayerRequest lets the author or an admin remove a request along with
// its comments, interactions and any moderation ticket.
func (s *CommunityService) DeletePrayerRequest(ctx context.Context, id string, actor models.UserProfile) error {
	req, err := fetchPrayerRequest(ctx, s.DB, id)
	if err != nil {
		return err
	}
	if req.Author_ID != actor.User_Profile_ID && !actor.Admin {
		return fmt.Errorf("deleting prayer request %s: %w", id, ErrUnauthorized)
	}

	return withTx(ctx, s.DB, func(tx *goqu.TxDatabase) error {
		return deletePrayerRequestCascade(ctx, tx, id)
	})
}

// AddComment is the only path that creates comments, so comment_count moves with it.
func (s *CommunityService) AddComment(ctx context.Context, requestID string, author models.UserProfile, content string) (models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Comment{}, invalid("content", "a comment cannot be empty")
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return models.Comment{}, invalid("content", fmt.Sprintf("must be at most %d characters", maxCommentLength))
	}

	comment := models.Comment{
		Comment_ID:        s.NewID(),
		Prayer_Request_ID: requestID,
		Author_ID:         author.User_Profile_ID,
		Author_Name:       authorName(author),
		Content:           content,
	}

	err := withTx(ctx, s.DB, func(tx *goqu.TxDatabase) error {
		req, err := fetchPrayerRequest(ctx, tx, requestID)
		if err != nil {
			return err
		}
		if req.Is_Flagged {
			return fmt.Errorf("prayer request %s: %w", requestID, ErrNotFound)
		}

		insert := tx.Insert(commentTable).Rows(comment).Returning("datetime_create")
		if _, err := insert.Executor().ScanValContext(ctx, &comment.Datetime_Create); err != nil {
			return fmt.Errorf("failed to create comment: %w", err)
		}

		_, err = tx.Update(requestTable).
			Set(goqu.Record{"comment_count": goqu.L("comment_count + 1")}).
			Where(goqu.C("prayer_request_id").Eq(requestID)).
			Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to update comment count: %w", err)
		}
		return nil
	})
	if err != nil {
		return models.Comment{}, err
	}
	return comment, nil
}

// DeleteComment removes one comment and decrements its request's count.
// The comment's author and admins may delete it.
func (s *CommunityService) DeleteComment(ctx context.Context, requestID, commentID string, actor models.UserProfile) error {
	if !validID(requestID) || !validID(commentID) {
		return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}

	var comment models.Comment
	found, err := s.DB.From(commentTable).
		Where(
			goqu.C("comment_id").Eq(commentID),
			goqu.C("prayer_request_id").Eq(requestID),
		).
		ScanStructContext(ctx, &comment)
	if err != nil {
		return fmt.Errorf("failed to fetch comment %s: %w", commentID, err)
	}
	if !found {
		return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}
	if comment.Author_ID != actor.User_Profile_ID && !actor.Admin {
		return fmt.Errorf("deleting comment %s: %w", commentID, ErrUnauthorized)
	}

	return withTx(ctx, s.DB, func(tx *goqu.TxDatabase) error {
		result, err := tx.Delete(commentTable).
			Where(goqu.C("comment_id").Eq(commentID)).
			Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete comment %s: %w", commentID, err)
		}

		// Lost a race with another delete; the count was already adjusted.
		if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
			return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
		}

		_, err = tx.Update(requestTable).
			Set(goqu.Record{"comment_count": goqu.L("GREATEST(comment_count - 1, 0)")}).
			Where(goqu.C("prayer_request_id").Eq(requestID)).
			Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to update comment count: %w", err)
		}
		return nil
	})
}

// ListComments returns a request's comments, oldest first.
func (s *CommunityService) ListComments(ctx context.Context, requestID string, viewer models.UserProfile) ([]models.Comment, error) {
	if _, err := s.GetPrayerRequest(ctx, requestID, viewer); err != nil {
		return nil, err
	}

	comments := []models.Comment{}
	err := s.DB.From(commentTable).
		Where(goqu.C("prayer_request_id").Eq(requestID)).
		Order(goqu.C("datetime_create").Asc()).
		ScanStructsContext(ctx, &comments)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch comments: %w", err)
	}
	return comments, nil
}

func fetchPrayerRequest(ctx context.Context, q queryer, id string) (models.CommunityPrayerRequest, error) {
	var req models.CommunityPrayerRequest
	if !validID(id) {
		return req, fmt.Errorf("prayer request %s: %w", id, ErrNotFound)
	}

	found, err := q.From(requestTable).
		Where(goqu.C("prayer_request_id").Eq(id)).
		ScanStructContext(ctx, &req)
	if err != nil {
		return req, fmt.Errorf("failed to fetch prayer request %s: %w", id, err)
	}
	if !found {
		return req, fmt.Errorf("prayer request %s: %w", id, ErrNotFound)
	}
	return req, nil
}

// deletePrayerRequestCascade removes a request and every record that references it.
func deletePrayerRequestCascade(ctx context.Context, q queryer, id string) error {
	for _, child := range []struct{ table, column string }{
		{commentTable, "prayer_request_id"},
		{interactionTable, "prayer_request_id"},
		{flagTable, "original_request_id"},
	} {
		_, err := q.Delete(child.table).
			Where(goqu.C(child.column).Eq(id)).
			Executor().ExecContext(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete %s rows for %s: %w", child.table, id, err)
		}
	}

	result, err := q.Delete(requestTable).
		Where(goqu.C("prayer_request_id").Eq(id)).
		Executor().ExecContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete prayer request %s: %w", id, err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		log.Printf("Prayer request %s was already gone", id)
	}
	return nil
}

func authorName(u models.UserProfile) string {
	if u.Display_Name != "" {
		return u.Display_Name
	}
	return u.Username
}
