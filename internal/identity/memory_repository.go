package identity

import (
	"context"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User // keyed by id
}

// NewMemoryRepository builds an in-memory user store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrNotFound
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return user, nil
}

func (r *memoryRepository) UpdateProfile(_ context.Context, id, displayName string, seller SellerProfile) error {
	return r.update(id, func(u *User) {
		u.DisplayName = displayName
		u.Seller = seller
	})
}

func (r *memoryRepository) ReplaceAddresses(_ context.Context, id string, addresses []Address) error {
	return r.update(id, func(u *User) {
		u.Addresses = append([]Address(nil), addresses...)
	})
}

func (r *memoryRepository) SetSellerState(_ context.Context, id string, isSeller, modeActive bool) error {
	return r.update(id, func(u *User) {
		u.IsSeller = isSeller
		u.SellerModeActive = modeActive
	})
}

func (r *memoryRepository) SetPasswordHash(_ context.Context, id string, hash []byte) error {
	return r.update(id, func(u *User) {
		u.PasswordHash = append([]byte(nil), hash...)
	})
}

func (r *memoryRepository) UpdateTokenVersion(_ context.Context, id string, version int) error {
	return r.update(id, func(u *User) {
		u.TokenVersion = version
	})
}

func (r *memoryRepository) update(id string, apply func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	apply(&user)
	r.users[id] = user
	return nil
}
