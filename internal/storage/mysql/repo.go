package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"flex_reviews/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertReviews(ctx context.Context, rs []domain.Review) error {
	if len(rs) == 0 {
		return nil
	}
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*11) // 11 params per row
	for _, rv := range rs {
		cats, _ := json.Marshal(rv.Categories)
		// Columns (from insertReviewsPrefix):
		// (id, type, status, rating, `text`, categories, submitted_at, guest_name, listing_name, channel, approved)
		values = append(values, "(?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			rv.ID,
			string(rv.Type),
			string(rv.Status),
			valF64(rv.Rating),
			rv.Text,
			string(cats),
			rv.SubmittedAt.UTC(),
			valStr(rv.GuestName),
			rv.ListingName,
			rv.Channel,
			rv.Approved,
		)
	}
	sqlStr := insertReviewsPrefix + strings.Join(values, ",") + insertReviewsOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, listingID int64, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, listingID, status, reason)
	return err
}

// SetApproval is a read-modify-write: the store assumes a single logical
// writer, so concurrent toggles of the same id are last-write-wins.
func (r *Repo) SetApproval(ctx context.Context, id int64, approved *bool) (domain.ApprovalResult, error) {
	var current bool
	if err := r.db.QueryRowContext(ctx, selectApprovedSQL, id).Scan(&current); err != nil {
		if err == sql.ErrNoRows {
			return domain.ApprovalResult{}, domain.ErrNotFound
		}
		return domain.ApprovalResult{}, err
	}
	next := !current
	if approved != nil {
		next = *approved
	}
	if _, err := r.db.ExecContext(ctx, updateApprovedSQL, next, id); err != nil {
		return domain.ApprovalResult{}, err
	}
	return domain.ApprovalResult{Success: true, Approved: next}, nil
}

func (r *Repo) DeleteReview(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, deleteReviewSQL, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) ReadAll(ctx context.Context) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, readAllSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Review
	for rows.Next() {
		var rv domain.Review
		var (
			typ, status string
			rating      sql.NullFloat64
			catsRaw     sql.RawBytes
			submittedAt sql.NullTime
			guestName   sql.NullString
		)
		if err := rows.Scan(
			&rv.ID,
			&typ,
			&status,
			&rating,
			&rv.Text,
			&catsRaw,
			&submittedAt,
			&guestName,
			&rv.ListingName,
			&rv.Channel,
			&rv.Approved,
		); err != nil {
			return nil, err
		}
		rv.Type = domain.ReviewType(typ)
		rv.Status = domain.ReviewStatus(status)
		if rating.Valid {
			f := rating.Float64
			rv.Rating = &f
		}
		if len(catsRaw) > 0 {
			_ = json.Unmarshal(catsRaw, &rv.Categories)
		}
		if submittedAt.Valid {
			rv.SubmittedAt = submittedAt.Time.UTC()
		}
		if guestName.Valid {
			s := guestName.String
			rv.GuestName = &s
		}
		out = append(out, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
