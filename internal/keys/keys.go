package keys

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"guru-api/internal/db"
)

var (
	ErrInvalidKey = errors.New("invalid API key")
	ErrKeyExpired = errors.New("API key expired")
	ErrNoCredits  = errors.New("insufficient credits")
)

const (
	keyPrefix   = "sk_"
	secretBytes = 24 // 192 bits of randomness
)

// Store is the subset of persistence the key lifecycle needs.
type Store interface {
	GetActiveKey(ctx context.Context, keyString string) (*db.APIKey, error)
	InsertKey(ctx context.Context, key *db.APIKey) error
	DebitKey(ctx context.Context, id int64) (int, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Issue creates and persists a new access key. A validFor of zero means the
// key never expires. The secret is only ever returned here.
func (s *Service) Issue(ctx context.Context, owner string, credits int, unlimited bool, validFor time.Duration) (*db.APIKey, error) {
	if credits < 0 {
		return nil, fmt.Errorf("credits must not be negative: %d", credits)
	}
	secret, err := generateSecret()
	if err != nil {
		return nil, fmt.Errorf("generating key secret: %w", err)
	}
	var expires *time.Time
	if validFor > 0 {
		t := s.now().UTC().Add(validFor)
		expires = &t
	}
	key := &db.APIKey{
		KeyString:   secret,
		OwnerName:   owner,
		Credits:     credits,
		IsUnlimited: unlimited,
		ExpiresAt:   expires,
		IsActive:    true,
		CreatedAt:   s.now().UTC(),
	}
	if err := s.store.InsertKey(ctx, key); err != nil {
		return nil, fmt.Errorf("persisting key: %w", err)
	}
	return key, nil
}

// Authorize validates an inbound key string: active lookup, then expiry,
// then quota. It gates every chat request.
func (s *Service) Authorize(ctx context.Context, keyString string) (*db.APIKey, error) {
	key, err := s.store.GetActiveKey(ctx, keyString)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidKey
	}
	if err != nil {
		return nil, fmt.Errorf("key lookup: %w", err)
	}
	if err := validate(key, s.now()); err != nil {
		return nil, err
	}
	return key, nil
}

func validate(key *db.APIKey, now time.Time) error {
	// expiry is compared as an exact instant in UTC, never as a string
	if key.ExpiresAt != nil && key.ExpiresAt.Before(now.UTC()) {
		return ErrKeyExpired
	}
	if !key.IsUnlimited && key.Credits <= 0 {
		return ErrNoCredits
	}
	return nil
}

// Debit consumes one credit and reports the new balance. Unlimited keys are
// left untouched.
func (s *Service) Debit(ctx context.Context, key *db.APIKey) (int, error) {
	if key.IsUnlimited {
		return key.Credits, nil
	}
	return s.store.DebitKey(ctx, key.ID)
}

func generateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return keyPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}
