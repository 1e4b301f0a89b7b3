package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ecotrack/auth-service/internal/models"
	"github.com/ecotrack/auth-service/internal/utils"
)

// MockUserRepository is an in-memory UserRepository
type MockUserRepository struct {
	mu           sync.Mutex
	users        map[int64]*models.User
	usersByEmail map[string]*models.User
	nextID       int64

	// Err, when set, is returned by every method
	Err error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:        make(map[int64]*models.User),
		usersByEmail: make(map[string]*models.User),
		nextID:       1,
	}
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.usersByEmail[user.Email]; ok {
		return utils.NewDuplicateError("email")
	}

	user.ID = m.nextID
	m.nextID++

	m.users[user.ID] = user
	m.usersByEmail[user.Email] = user
	return nil
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.users[id]
	if !ok {
		return nil, utils.NewNotFoundError("User not found")
	}
	return user, nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, m.Err
	}
	user, ok := m.usersByEmail[email]
	if !ok {
		return nil, utils.NewNotFoundError("User not found")
	}
	return user, nil
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return nil, 0, m.Err
	}

	all := make([]*models.User, 0, len(m.users))
	for _, user := range m.users {
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	total := int64(len(all))
	if offset >= len(all) {
		return []*models.User{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User not found")
	}
	user.PasswordHash = passwordHash
	return nil
}

func (m *MockUserRepository) SetResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User not found")
	}
	user.ResetTokenHash = &tokenHash
	user.ResetExpiresAt = &expiresAt
	return nil
}

func (m *MockUserRepository) ClearResetToken(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User not found")
	}
	user.ResetTokenHash = nil
	user.ResetExpiresAt = nil
	return nil
}

func (m *MockUserRepository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.ResetTokenHash == nil || *user.ResetTokenHash != tokenHash {
			continue
		}
		if user.ResetExpiresAt == nil || !user.ResetExpiresAt.After(now) {
			continue
		}
		user.PasswordHash = passwordHash
		user.ResetTokenHash = nil
		user.ResetExpiresAt = nil
		return user, nil
	}
	return nil, utils.NewInvalidResetTokenError()
}

func (m *MockUserRepository) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return 0, m.Err
	}

	var cleared int64
	for _, user := range m.users {
		if user.ResetExpiresAt != nil && !user.ResetExpiresAt.After(now) {
			user.ResetTokenHash = nil
			user.ResetExpiresAt = nil
			cleared++
		}
	}
	return cleared, nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return utils.NewNotFoundError("User not found")
	}
	delete(m.usersByEmail, user.Email)
	delete(m.users, id)
	return nil
}

// MockMailer records reset messages
type MockMailer struct {
	SendFunc func(ctx context.Context, msg models.PasswordResetMessage) error
	Sent     []models.PasswordResetMessage
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, msg models.PasswordResetMessage) error {
	m.Sent = append(m.Sent, msg)
	if m.SendFunc != nil {
		return m.SendFunc(ctx, msg)
	}
	return nil
}

// MockRecorder counts auth events by event and outcome
type MockRecorder struct {
	mu     sync.Mutex
	Events map[string]int
}

func (r *MockRecorder) AuthEvent(event string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Events == nil {
		r.Events = make(map[string]int)
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	r.Events[event+"/"+outcome]++
}

func (r *MockRecorder) Count(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.Events[key]
}
