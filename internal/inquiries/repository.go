package inquiries

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates the addressed inquiry does not exist.
var ErrNotFound = errors.New("inquiry not found")

// Repository persists inquiries.
type Repository interface {
	Create(ctx context.Context, q Inquiry) error
	Get(ctx context.Context, id string) (Inquiry, error)
	SetAnswer(ctx context.Context, id, answer string, at time.Time) error
	ListByBuyer(ctx context.Context, buyerID string) ([]Inquiry, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Inquiry, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed inquiry repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const inquiryColumns = `id, buyer_id, seller_id, product_id, question, answer, status, created_at, answered_at`

// Create inserts an inquiry.
func (r *PostgresRepository) Create(ctx context.Context, q Inquiry) error {
	id, err := uuid.Parse(q.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO inquiries (`+inquiryColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, q.BuyerID, q.SellerID, q.ProductID, q.Question, q.Answer, q.Status,
		q.CreatedAt.UTC(), q.AnsweredAt)
	return err
}

// Get fetches an inquiry by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Inquiry, error) {
	inquiryID, err := uuid.Parse(id)
	if err != nil {
		return Inquiry{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE id = $1`, inquiryID)
	return scanInquiry(row)
}

// SetAnswer stores the seller's answer and flips the status.
func (r *PostgresRepository) SetAnswer(ctx context.Context, id, answer string, at time.Time) error {
	inquiryID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE inquiries SET answer = $2, status = $3, answered_at = $4 WHERE id = $1`,
		inquiryID, answer, StatusAnswered, at.UTC())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByBuyer returns the buyer's inquiries most-recent-first.
func (r *PostgresRepository) ListByBuyer(ctx context.Context, buyerID string) ([]Inquiry, error) {
	return r.list(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE buyer_id = $1 ORDER BY created_at DESC`, buyerID)
}

// ListBySeller returns the seller's inquiries most-recent-first.
func (r *PostgresRepository) ListBySeller(ctx context.Context, sellerID string) ([]Inquiry, error) {
	return r.list(ctx, `SELECT `+inquiryColumns+` FROM inquiries WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID)
}

func (r *PostgresRepository) list(ctx context.Context, query, owner string) ([]Inquiry, error) {
	rows, err := r.db.Query(ctx, query, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Inquiry
	for rows.Next() {
		q, err := scanInquiry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func scanInquiry(row pgx.Row) (Inquiry, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		q         Inquiry
	)
	err := row.Scan(&id, &q.BuyerID, &q.SellerID, &q.ProductID, &q.Question,
		&q.Answer, &q.Status, &createdAt, &q.AnsweredAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Inquiry{}, ErrNotFound
		}
		return Inquiry{}, err
	}
	q.ID = id.String()
	q.CreatedAt = createdAt.UTC()
	return q, nil
}
