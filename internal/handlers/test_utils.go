package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chepyr/task-collab-api/internal/apperr"
	"github.com/chepyr/task-collab-api/internal/auth"
	"github.com/chepyr/task-collab-api/internal/models"
)

type MockTaskRepository struct {
	tasks     map[uuid.UUID]*models.Task
	order     []uuid.UUID
	createErr error
	mutex     sync.Mutex
}

func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{tasks: make(map[uuid.UUID]*models.Task)}
}

func (m *MockTaskRepository) Create(ctx context.Context, task *models.Task) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.createErr != nil {
		return m.createErr
	}
	copied := *task
	m.tasks[task.ID] = &copied
	m.order = append(m.order, task.ID)
	return nil
}

func (m *MockTaskRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	tasks := []*models.Task{}
	for _, id := range m.order {
		task, exists := m.tasks[id]
		if exists && task.OwnerID == ownerID {
			copied := *task
			tasks = append(tasks, &copied)
		}
	}
	return tasks, nil
}

func (m *MockTaskRepository) GetByIDForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Task, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task, exists := m.tasks[id]
	if !exists || task.OwnerID != ownerID {
		return nil, apperr.ErrNotFound
	}
	copied := *task
	return &copied, nil
}

func (m *MockTaskRepository) Update(ctx context.Context, task *models.Task) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	existing, exists := m.tasks[task.ID]
	if !exists || existing.OwnerID != task.OwnerID {
		return apperr.ErrNotFound
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *MockTaskRepository) DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	task, exists := m.tasks[id]
	if !exists || task.OwnerID != ownerID {
		return apperr.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func newTestTokenManager() *auth.TokenManager {
	return auth.NewTokenManager(auth.TokenConfig{
		Secret:     "test-secret-32-bytes-long-1234567890",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 24 * time.Hour,
		Issuer:     "task-collab-api-test",
	})
}

func newTestHandler() (*Handler, *auth.MockAccountRepository, *MockTaskRepository) {
	accountRepo := auth.NewMockAccountRepository()
	taskRepo := NewMockTaskRepository()
	tokens := newTestTokenManager()

	handler := &Handler{
		AccountRepo:   accountRepo,
		TaskRepo:      taskRepo,
		Authenticator: auth.NewAuthenticator(accountRepo, tokens),
		Tokens:        tokens,
		RateLimiter:   NewRateLimiter(100, time.Minute),
		Hub:           NewEventHub(),
	}
	return handler, accountRepo, taskRepo
}

// authedRequest builds a request already carrying the account in its
// context, the way the auth middleware would leave it.
func authedRequest(method, target, body string, account *models.Account) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.168.1.1:1234"
	if account != nil {
		req = req.WithContext(context.WithValue(req.Context(), accountContextKey, account))
	}
	return req
}
