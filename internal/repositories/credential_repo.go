package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"storefront/internal/models"
)

// CredentialRepository looks up local shopper accounts.
type CredentialRepository interface {
	Create(ctx context.Context, cred *models.Credential) error
	GetByUsername(ctx context.Context, username string) (*models.Credential, error)
}

// MockCredentialRepository keeps accounts in memory, keyed by lower-cased
// username.
type MockCredentialRepository struct {
	creds map[string]models.Credential
	mu    sync.RWMutex
}

// NewMockCredentialRepository creates a new instance of MockCredentialRepository.
func NewMockCredentialRepository() *MockCredentialRepository {
	return &MockCredentialRepository{
		creds: make(map[string]models.Credential),
	}
}

// Create stores cred. Usernames are unique.
func (r *MockCredentialRepository) Create(_ context.Context, cred *models.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(cred.Username)
	if _, exists := r.creds[key]; exists {
		return fmt.Errorf("username '%s' already taken", cred.Username)
	}
	r.creds[key] = *cred
	return nil
}

// GetByUsername returns the account for username.
func (r *MockCredentialRepository) GetByUsername(_ context.Context, username string) (*models.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cred, ok := r.creds[strings.ToLower(username)]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", username, ErrNotFound)
	}
	return &cred, nil
}
