package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ummachristians-netizen/umma-christians/internal/models"
)

var errEmailTaken = errors.New("email already registered")

// UserStore persists office accounts for the local provider.
type UserStore interface {
	// FindByEmail returns nil without error when there is no such account.
	FindByEmail(ctx context.Context, email string) (*models.OfficeUser, error)
	Create(ctx context.Context, u *models.OfficeUser) error
	SetPassword(ctx context.Context, id, hash string) error
	RecordLogin(ctx context.Context, id, ip string) error
}

// GormUsers keeps accounts in the office_users table.
type GormUsers struct{ db *gorm.DB }

func NewGormUsers(db *gorm.DB) *GormUsers { return &GormUsers{db: db} }

func (s *GormUsers) FindByEmail(ctx context.Context, email string) (*models.OfficeUser, error) {
	var u models.OfficeUser
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (s *GormUsers) Create(ctx context.Context, u *models.OfficeUser) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.OfficeUser{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return errEmailTaken
	}
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *GormUsers) SetPassword(ctx context.Context, id, hash string) error {
	return s.db.WithContext(ctx).Model(&models.OfficeUser{}).Where("id = ?", id).Update("password_hash", hash).Error
}

func (s *GormUsers) RecordLogin(ctx context.Context, id, ip string) error {
	return s.db.WithContext(ctx).Model(&models.OfficeUser{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_login_time": time.Now(),
		"last_login_ip":   ip,
	}).Error
}

// MemoryUsers is an in-process UserStore for previews and tests.
type MemoryUsers struct {
	mu    sync.Mutex
	users map[string]models.OfficeUser
}

func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{users: make(map[string]models.OfficeUser)}
}

func (m *MemoryUsers) FindByEmail(_ context.Context, email string) (*models.OfficeUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryUsers) Create(_ context.Context, u *models.OfficeUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, ok := m.users[key]; ok {
		return errEmailTaken
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	m.users[key] = *u
	return nil
}

func (m *MemoryUsers) SetPassword(_ context.Context, id, hash string) error {
	return m.update(id, func(u *models.OfficeUser) { u.PasswordHash = hash })
}

func (m *MemoryUsers) RecordLogin(_ context.Context, id, ip string) error {
	now := time.Now()
	return m.update(id, func(u *models.OfficeUser) {
		u.LastLoginTime = &now
		u.LastLoginIP = ip
	})
}

func (m *MemoryUsers) update(id string, fn func(u *models.OfficeUser)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, u := range m.users {
		if u.ID == id {
			fn(&u)
			u.UpdatedAt = time.Now()
			m.users[key] = u
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
