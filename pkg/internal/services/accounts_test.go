package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/openballot/openballot/pkg/internal/models"
	"gorm.io/gorm"
)

type fakeUserStore struct {
	mu    sync.Mutex
	seq   uint
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (f *fakeUserStore) Create(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[user.Email]; ok {
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range f.users {
		if existing.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}

	f.seq++
	user.ID = f.seq
	f.users[user.Email] = *user
	return nil
}

func (f *fakeUserStore) ByEmail(email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	user, ok := f.users[email]
	if !ok {
		return models.User{}, ErrNotFound
	}
	return user, nil
}

func TestRegisterAndAuthenticate(t *testing.T) {
	accounts := NewUserAccountService(newFakeUserStore())

	user, err := accounts.Register("alice", "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if user.PasswordHash == "hunter22" {
		t.Fatalf("password stored in the clear")
	}

	got, err := accounts.Authenticate("alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %d, got %d", user.ID, got.ID)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	accounts := NewUserAccountService(newFakeUserStore())
	if _, err := accounts.Register("alice", "alice@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := accounts.Authenticate("alice@example.com", "wrong"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for wrong password, got %v", err)
	}
	if _, err := accounts.Authenticate("nobody@example.com", "hunter22"); !errors.Is(err, ErrBadCredentials) {
		t.Fatalf("expected ErrBadCredentials for unknown email, got %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	accounts := NewUserAccountService(newFakeUserStore())
	if _, err := accounts.Register("alice", "alice@example.com", "hunter22"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if _, err := accounts.Register("alice2", "alice@example.com", "hunter22"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists for duplicate email, got %v", err)
	}
	if _, err := accounts.Register("alice", "other@example.com", "hunter22"); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists for duplicate username, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	accounts := NewUserAccountService(newFakeUserStore())
	if _, err := accounts.Register("", "alice@example.com", "hunter22"); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
