package store

import (
	"errors"

	"github.com/openballot/openballot/pkg/internal/models"
	"github.com/openballot/openballot/pkg/internal/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VoteStore is the gorm-backed implementation of services.VoteStore.
type VoteStore struct {
	db *gorm.DB
}

func NewVoteStore(db *gorm.DB) *VoteStore {
	return &VoteStore{db: db}
}

func (s *VoteStore) HasVoted(pollID uint, voterEmail string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Vote{}).
		Where("poll_id = ? AND voter_email = ?", pollID, voterEmail).
		Count(&count).Error
	return count > 0, err
}

// Apply records the vote and bumps the option's cached counter as one
// all-or-nothing unit. The poll row is share locked so a concurrent
// DeletePoll either waits for this commit or has already made the poll
// vanish, in which case the vote is rejected as not found. A unique
// violation on (poll_id, voter_email) escapes as gorm.ErrDuplicatedKey
// for the ledger to translate.
func (s *VoteStore) Apply(vote *models.Vote) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var poll models.Poll
		if err := tx.Clauses(clause.Locking{Strength: "SHARE"}).
			Select("id").Where("id = ?", vote.PollID).First(&poll).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return services.ErrNotFound
			}
			return err
		}

		if err := tx.Create(vote).Error; err != nil {
			return err
		}

		res := tx.Model(&models.Option{}).
			Where("id = ? AND poll_id = ?", vote.OptionID, vote.PollID).
			UpdateColumn("votes", gorm.Expr("votes + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return services.ErrInvalidOption
		}
		return nil
	})
}

func (s *VoteStore) OptionsOf(pollID uint) ([]models.Option, error) {
	var options []models.Option
	err := s.db.Where("poll_id = ?", pollID).Order("id").Find(&options).Error
	return options, err
}
