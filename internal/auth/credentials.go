package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/adityar/secrets-wall/internal/models"
	"github.com/adityar/secrets-wall/internal/store"
)

// ErrInvalidCredential means the username/password pair did not match a
// local account. Deliberately covers both unknown usernames and wrong
// passwords so the two are indistinguishable to a caller.
var ErrInvalidCredential = errors.New("invalid username or password")

// UserStore defines the interface for user persistence.
type UserStore interface {
	CreateUser(ctx context.Context, username, hashedPw string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpsertByGoogleID(ctx context.Context, googleID string) (*models.User, error)
}

// CredentialHasher is the one-way hashing capability used for local passwords.
type CredentialHasher interface {
	Hash(plaintext string) (string, error)
	Compare(hashed, plaintext string) error
}

// BcryptHasher implements CredentialHasher with golang.org/x/crypto/bcrypt.
type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(plaintext string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(plaintext), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(out), nil
}

func (h BcryptHasher) Compare(hashed, plaintext string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext))
}

// CredentialService registers and authenticates local accounts. Plaintext
// passwords never reach the store.
type CredentialService struct {
	users  UserStore
	hasher CredentialHasher
}

func NewCredentialService(users UserStore, hasher CredentialHasher) *CredentialService {
	return &CredentialService{users: users, hasher: hasher}
}

// Register creates a local account. Returns store.ErrDuplicateUsername when
// the username is taken.
func (s *CredentialService) Register(ctx context.Context, username, password string) (*models.User, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	return s.users.CreateUser(ctx, username, hashed)
}

// Authenticate verifies a username/password pair against the stored hash.
func (s *CredentialService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}
	if user.Password == "" {
		// OAuth-only account, no local credential to compare against.
		return nil, ErrInvalidCredential
	}
	if err := s.hasher.Compare(user.Password, password); err != nil {
		return nil, ErrInvalidCredential
	}
	return user, nil
}
