package identity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound indicates the addressed user does not exist.
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken indicates a registration collision on the email column.
	ErrEmailTaken = errors.New("email already registered")
)

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	UpdateProfile(ctx context.Context, id, displayName string, seller SellerProfile) error
	ReplaceAddresses(ctx context.Context, id string, addresses []Address) error
	SetSellerState(ctx context.Context, id string, isSeller, modeActive bool) error
	SetPasswordHash(ctx context.Context, id string, hash []byte) error
	UpdateTokenVersion(ctx context.Context, id string, version int) error
}

// PostgresRepository implements Repository using PostgreSQL. Addresses are a
// jsonb column so the full-array replace is a single UPDATE.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	addrs, err := json.Marshal(user.Addresses)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users
        (id, email, password_hash, display_name, is_seller, seller_mode_active,
         shop_name, business_name, contact_phone, addresses, token_version, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		userID, user.Email, user.PasswordHash, user.DisplayName, user.IsSeller,
		user.SellerModeActive, user.Seller.ShopName, user.Seller.BusinessName,
		user.Seller.ContactPhone, addrs, user.TokenVersion, user.CreatedAt.UTC())
	return err
}

const userColumns = `id, email, password_hash, display_name, is_seller, seller_mode_active,
        shop_name, business_name, contact_phone, addresses, token_version, created_at`

// FindByEmail fetches a user by email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// UpdateProfile stores display and seller-profile fields.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, displayName string, seller SellerProfile) error {
	return r.exec(ctx, id, `UPDATE users SET display_name = $2, shop_name = $3,
        business_name = $4, contact_phone = $5 WHERE id = $1`,
		displayName, seller.ShopName, seller.BusinessName, seller.ContactPhone)
}

// ReplaceAddresses overwrites the whole address list.
func (r *PostgresRepository) ReplaceAddresses(ctx context.Context, id string, addresses []Address) error {
	payload, err := json.Marshal(addresses)
	if err != nil {
		return err
	}
	return r.exec(ctx, id, `UPDATE users SET addresses = $2 WHERE id = $1`, payload)
}

// SetSellerState stores the role flags.
func (r *PostgresRepository) SetSellerState(ctx context.Context, id string, isSeller, modeActive bool) error {
	return r.exec(ctx, id, `UPDATE users SET is_seller = $2, seller_mode_active = $3 WHERE id = $1`, isSeller, modeActive)
}

// SetPasswordHash rewrites the stored credential hash.
func (r *PostgresRepository) SetPasswordHash(ctx context.Context, id string, hash []byte) error {
	return r.exec(ctx, id, `UPDATE users SET password_hash = $2 WHERE id = $1`, hash)
}

// UpdateTokenVersion stores the token invalidation counter.
func (r *PostgresRepository) UpdateTokenVersion(ctx context.Context, id string, version int) error {
	return r.exec(ctx, id, `UPDATE users SET token_version = $2 WHERE id = $1`, version)
}

func (r *PostgresRepository) exec(ctx context.Context, id, query string, args ...any) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, query, append([]any{userID}, args...)...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		addrs     []byte
		createdAt time.Time
		user      User
	)
	err := row.Scan(&id, &user.Email, &user.PasswordHash, &user.DisplayName,
		&user.IsSeller, &user.SellerModeActive, &user.Seller.ShopName,
		&user.Seller.BusinessName, &user.Seller.ContactPhone, &addrs,
		&user.TokenVersion, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if len(addrs) > 0 {
		if err := json.Unmarshal(addrs, &user.Addresses); err != nil {
			return User{}, err
		}
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
