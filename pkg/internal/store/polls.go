package store

import (
	"errors"

	"github.com/openballot/openballot/pkg/internal/models"
	"github.com/openballot/openballot/pkg/internal/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PollStore is the gorm-backed implementation of services.PollStore.
type PollStore struct {
	db *gorm.DB
}

func NewPollStore(db *gorm.DB) *PollStore {
	return &PollStore{db: db}
}

func (s *PollStore) Create(poll *models.Poll) error {
	return s.db.Create(poll).Error
}

func (s *PollStore) ByID(id uint) (models.Poll, error) {
	var poll models.Poll
	err := s.db.Preload("Options").Preload("User").
		Where("id = ?", id).First(&poll).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return poll, services.ErrNotFound
	}
	return poll, err
}

func (s *PollStore) ByShareToken(token string) (models.Poll, error) {
	var poll models.Poll
	err := s.db.Preload("Options").Preload("User").
		Where("share_token = ?", token).First(&poll).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return poll, services.ErrNotFound
	}
	return poll, err
}

func (s *PollStore) ListByOwner(ownerID uint) ([]models.Poll, error) {
	var polls []models.Poll
	err := s.db.Preload("Options").
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&polls).Error
	return polls, err
}

// Delete removes the poll with its options and votes in one
// transaction. The poll row is locked FOR UPDATE first so the delete
// serializes against concurrent vote inserts, which take a share lock
// on the same row; no vote can slip in between the cascade steps.
func (s *PollStore) Delete(poll *models.Poll) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var locked models.Poll
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", poll.ID).First(&locked).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrNotFound
			}
			return err
		}

		if err := tx.Where("poll_id = ?", poll.ID).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		if err := tx.Where("poll_id = ?", poll.ID).Delete(&models.Option{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Poll{}, poll.ID).Error
	})
}
