package store

import (
	"errors"

	"github.com/openballot/openballot/pkg/internal/models"
	"github.com/openballot/openballot/pkg/internal/services"
	"gorm.io/gorm"
)

// UserStore is the gorm-backed implementation of services.UserStore.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(user *models.User) error {
	return s.db.Create(user).Error
}

func (s *UserStore) ByEmail(email string) (models.User, error) {
	var user models.User
	err := s.db.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return user, services.ErrNotFound
	}
	return user, err
}
