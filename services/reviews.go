package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"dhaba/db"
	"dhaba/models"
)

const (
	maxReviewerName = 100
	maxReviewSource = 50
)

var reviewColumns = []string{"id", "reviewer_name", "rating", "body", "source", "is_approved", "created_at"}

type ReviewService struct {
	db       *db.DB
	log      *zap.Logger
	notifier Notifier
}

func NewReviewService(d *db.DB, log *zap.Logger) *ReviewService {
	return &ReviewService{db: d, log: log, notifier: NopNotifier()}
}

// SetNotifier registers who hears about reviews waiting for approval. nil restores the no-op.
func (s *ReviewService) SetNotifier(n Notifier) {
	if n == nil {
		n = NopNotifier()
	}
	s.notifier = n
}

type ReviewFilter struct {
	Approved *bool
	Rating   *int
	Source   string
	Search   string // case-insensitive match on reviewer name or body
	Limit    uint64
}

func (f ReviewFilter) apply(q sq.SelectBuilder) sq.SelectBuilder {
	if f.Approved != nil {
		q = q.Where(sq.Eq{"is_approved": *f.Approved})
	}
	if f.Rating != nil {
		q = q.Where(sq.Eq{"rating": *f.Rating})
	}
	if src := strings.TrimSpace(f.Source); src != "" {
		q = q.Where(sq.Eq{"source": src})
	}
	if s := strings.ToLower(strings.TrimSpace(f.Search)); s != "" {
		pattern := "%" + s + "%"
		q = q.Where(sq.Or{
			sq.Like{"LOWER(reviewer_name)": pattern},
			sq.Like{"LOWER(body)": pattern},
		})
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	return q
}

// ListReviews returns matching reviews, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, f ReviewFilter) ([]models.Review, error) {
	const op = "ReviewService.ListReviews"
	query, args, err := f.apply(s.db.Builder().Select(reviewColumns...).From("reviews")).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, internal(op, err)
	}
	out := []models.Review{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, internal(op, err)
	}
	return out, nil
}

func (s *ReviewService) GetReview(ctx context.Context, id int64) (*models.Review, error) {
	return s.getReview(ctx, s.db, id)
}

func (s *ReviewService) getReview(ctx context.Context, q sqlx.QueryerContext, id int64) (*models.Review, error) {
	const op = "ReviewService.GetReview"
	query, args, err := s.db.Builder().Select(reviewColumns...).From("reviews").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, internal(op, err)
	}
	var r models.Review
	if err := sqlx.GetContext(ctx, q, &r, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(op, "review", id)
		}
		return nil, internal(op, err)
	}
	return &r, nil
}

func validateReview(op string, in *models.ReviewInput) error {
	in.ReviewerName = strings.TrimSpace(in.ReviewerName)
	in.Body = strings.TrimSpace(in.Body)
	in.Source = strings.TrimSpace(in.Source)
	switch {
	case in.ReviewerName == "":
		return invalidf(op, "reviewer name is required")
	case utf8.RuneCountInString(in.ReviewerName) > maxReviewerName:
		return invalidf(op, "reviewer name must be at most %d characters", maxReviewerName)
	case !models.ValidRating(in.Rating):
		return invalidf(op, "rating must be between %d and %d", models.MinRating, models.MaxRating)
	case in.Body == "":
		return invalidf(op, "review body is required")
	case utf8.RuneCountInString(in.Source) > maxReviewSource:
		return invalidf(op, "source must be at most %d characters", maxReviewSource)
	}
	return nil
}

func (s *ReviewService) CreateReview(ctx context.Context, in models.ReviewInput) (*models.Review, error) {
	const op = "ReviewService.CreateReview"
	if err := validateReview(op, &in); err != nil {
		return nil, err
	}

	var r *models.Review
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := s.db.Builder().
			Insert("reviews").
			Columns("reviewer_name", "rating", "body", "source", "is_approved", "created_at").
			Values(in.ReviewerName, in.Rating, in.Body, in.Source, in.IsApproved, time.Now().UTC()).
			Suffix("RETURNING id").
			ToSql()
		if err != nil {
			return err
		}
		var id int64
		if err := tx.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return err
		}
		r, err = s.getReview(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, reviewWriteError(op, err)
	}

	s.log.Info("Review created", zap.Int64("review_id", r.ID), zap.Bool("approved", r.IsApproved))
	if !r.IsApproved {
		s.notifier.ReviewSubmitted(ctx, r)
	}
	return r, nil
}

func (s *ReviewService) UpdateReview(ctx context.Context, id int64, in models.ReviewInput) (*models.Review, error) {
	const op = "ReviewService.UpdateReview"
	if err := validateReview(op, &in); err != nil {
		return nil, err
	}

	var r *models.Review
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := s.db.Builder().
			Update("reviews").
			Set("reviewer_name", in.ReviewerName).
			Set("rating", in.Rating).
			Set("body", in.Body).
			Set("source", in.Source).
			Set("is_approved", in.IsApproved).
			Where(sq.Eq{"id": id}).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound(op, "review", id)
		}
		r, err = s.getReview(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, reviewWriteError(op, err)
	}
	return r, nil
}

func (s *ReviewService) DeleteReview(ctx context.Context, id int64) error {
	const op = "ReviewService.DeleteReview"
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := s.db.Builder().Delete("reviews").Where(sq.Eq{"id": id}).ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return notFound(op, "review", id)
		}
		return nil
	})
	if err != nil {
		return reviewWriteError(op, err)
	}
	s.log.Info("Review deleted", zap.Int64("review_id", id))
	return nil
}

// ApproveReviews marks every listed review approved in one transaction and returns how many
// rows matched. Unknown ids are skipped, duplicates count once.
func (s *ReviewService) ApproveReviews(ctx context.Context, ids []int64) (int64, error) {
	const op = "ReviewService.ApproveReviews"
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}

	var updated int64
	err := s.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		query, args, err := s.db.Builder().
			Update("reviews").
			Set("is_approved", true).
			Where(sq.Eq{"id": ids}).
			ToSql()
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		updated, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, internal(op, err)
	}
	s.log.Info("Reviews approved", zap.Int64("updated", updated), zap.Int("requested", len(ids)))
	return updated, nil
}

// ReviewCounts summarises moderation state.
type ReviewCounts struct {
	Total    int `db:"total"`
	Approved int `db:"approved"`
	Pending  int `db:"pending"`
}

func (s *ReviewService) Counts(ctx context.Context) (*ReviewCounts, error) {
	const op = "ReviewService.Counts"
	var c ReviewCounts
	err := s.db.GetContext(ctx, &c, `
		SELECT
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN is_approved THEN 1 ELSE 0 END), 0) AS approved,
			COALESCE(SUM(CASE WHEN is_approved THEN 0 ELSE 1 END), 0) AS pending
		FROM reviews`)
	if err != nil {
		return nil, internal(op, err)
	}
	return &c, nil
}

func reviewWriteError(op string, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	if db.IsCheckViolation(err) {
		return &Error{Code: EInvalid, Op: op, Msg: "review violates a field constraint", Err: err}
	}
	return internal(op, err)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
