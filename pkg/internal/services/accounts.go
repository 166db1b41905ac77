package services

import (
	"errors"

	"github.com/openballot/openballot/pkg/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserStore interface {
	Create(user *models.User) error
	ByEmail(email string) (models.User, error)
}

type UserAccountService struct {
	users UserStore
}

func NewUserAccountService(users UserStore) *UserAccountService {
	return &UserAccountService{users: users}
}

func (s *UserAccountService) Register(username, email, password string) (models.User, error) {
	if len(username) == 0 || len(email) == 0 || len(password) == 0 {
		return models.User{}, invalidf("username, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(&user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.User{}, ErrExists
		}
		return models.User{}, err
	}

	return user, nil
}

// Authenticate resolves the login identifier (the account's email, as
// in the reference client) and checks the password against the stored
// bcrypt hash. Unknown accounts and wrong passwords are
// indistinguishable to the caller.
func (s *UserAccountService) Authenticate(email, password string) (models.User, error) {
	user, err := s.users.ByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return models.User{}, ErrBadCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrBadCredentials
	}

	return user, nil
}
