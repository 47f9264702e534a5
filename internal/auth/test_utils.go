package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/chepyr/task-collab-api/internal/apperr"
	"github.com/chepyr/task-collab-api/internal/models"
)

type MockAccountRepository struct {
	accounts map[uuid.UUID]*models.Account
	getErr   error
	mutex    sync.Mutex
}

func NewMockAccountRepository() *MockAccountRepository {
	return &MockAccountRepository{accounts: make(map[uuid.UUID]*models.Account)}
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, existing := range m.accounts {
		if existing.Username == account.Username {
			return apperr.Duplicate("username")
		}
		if existing.Email == account.Email {
			return apperr.Duplicate("email")
		}
	}
	m.accounts[account.ID] = account
	return nil
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	account, exists := m.accounts[id]
	if !exists {
		return nil, apperr.ErrNotFound
	}
	return account, nil
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return m.findBy(func(a *models.Account) bool { return a.Username == username })
}

func (m *MockAccountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return m.findBy(func(a *models.Account) bool { return a.Email == email })
}

func (m *MockAccountRepository) findBy(match func(*models.Account) bool) (*models.Account, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, account := range m.accounts {
		if match(account) {
			return account, nil
		}
	}
	return nil, apperr.ErrNotFound
}

// Delete removes an account directly, for tests that need a token whose
// subject no longer exists.
func (m *MockAccountRepository) Delete(id uuid.UUID) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.accounts, id)
}

func (m *MockAccountRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	_, err := m.GetByUsername(ctx, username)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func (m *MockAccountRepository) EmailTaken(ctx context.Context, email string) (bool, error) {
	_, err := m.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	return false, nil
}

func SetupMockAccount(repo *MockAccountRepository, username, email, password string) *models.Account {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	account := &models.Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	repo.accounts[account.ID] = account
	return account
}

func testTokenManager() *TokenManager {
	return NewTokenManager(TokenConfig{
		Secret:     "test-secret-32-bytes-long-1234567890",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Issuer:     "task-collab-api-test",
	})
}
