package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrInvalidCredentials is returned on any email/password mismatch. The
	// handler maps it to a single user-facing message so login probes cannot
	// distinguish "unknown email" from "wrong password".
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrSellerProfileRequired indicates a role switch to seller without shop data.
	ErrSellerProfileRequired = errors.New("seller profile required")
)

// Service manages identity lifecycle.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a buyer account with a hashed password.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	if !strings.Contains(email, "@") {
		return User{}, errors.New("email must be a valid address")
	}
	if len(creds.Password) < 8 {
		return User{}, errors.New("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(creds.DisplayName),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	return user, nil
}

// Authenticate verifies an email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return user, nil
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// ProfileInput captures the editable profile fields.
type ProfileInput struct {
	DisplayName string
	Seller      SellerProfile
}

// UpdateProfile stores the submitted fields and returns the fresh user so the
// caller can hand it straight to the session without a second read.
func (s *Service) UpdateProfile(ctx context.Context, id string, input ProfileInput) (User, error) {
	if strings.TrimSpace(input.DisplayName) == "" {
		return User{}, errors.New("display name must not be empty")
	}
	if err := s.repo.UpdateProfile(ctx, id, strings.TrimSpace(input.DisplayName), input.Seller); err != nil {
		return User{}, err
	}
	return s.repo.FindByID(ctx, id)
}

// ReplaceAddresses overwrites the address book wholesale.
func (s *Service) ReplaceAddresses(ctx context.Context, id string, addresses []Address) (User, error) {
	for _, a := range addresses {
		if a.Line1 == "" || a.City == "" {
			return User{}, errors.New("address requires line1 and city")
		}
	}
	if err := s.repo.ReplaceAddresses(ctx, id, addresses); err != nil {
		return User{}, err
	}
	return s.repo.FindByID(ctx, id)
}

// SwitchRole toggles seller mode. The first switch to seller promotes the
// account, which requires at least a shop name; subsequent switches only flip
// the active-mode flag so a seller can browse as a buyer without logging out.
func (s *Service) SwitchRole(ctx context.Context, id string, wantSeller bool, seller SellerProfile) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	if wantSeller && !user.IsSeller {
		if strings.TrimSpace(seller.ShopName) == "" {
			return User{}, ErrSellerProfileRequired
		}
		if err := s.repo.UpdateProfile(ctx, id, user.DisplayName, seller); err != nil {
			return User{}, err
		}
	}

	isSeller := user.IsSeller || wantSeller
	if err := s.repo.SetSellerState(ctx, id, isSeller, wantSeller); err != nil {
		return User{}, err
	}

	return s.repo.FindByID(ctx, id)
}
