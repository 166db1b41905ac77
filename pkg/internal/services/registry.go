package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	"github.com/openballot/openballot/pkg/internal/models"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// PollStore is the persistence surface the registry and the vote ledger
// need from the poll side. The gorm implementation lives in the store
// package; tests provide in-memory fakes.
type PollStore interface {
	Create(poll *models.Poll) error
	ByID(id uint) (models.Poll, error)
	ByShareToken(token string) (models.Poll, error)
	ListByOwner(ownerID uint) ([]models.Poll, error)
	Delete(poll *models.Poll) error
}

const (
	shareTokenBytes = 32
	tokenRetryLimit = 5
	sharedCacheTTL  = 10 * time.Minute
)

type PollRegistry struct {
	polls PollStore
	votes VoteStore
	cache *marshaler.Marshaler
}

// NewPollRegistry wires the registry; cache may be nil to disable the
// shared-poll metadata cache.
func NewPollRegistry(polls PollStore, votes VoteStore, cache *marshaler.Marshaler) *PollRegistry {
	return &PollRegistry{polls: polls, votes: votes, cache: cache}
}

type PollSummary struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Question    string     `json:"question"`
	EndDate     *time.Time `json:"end_date"`
	ShareToken  string     `json:"share_token"`
	CreatedAt   time.Time  `json:"created_at"`
	OptionCount int        `json:"option_count"`
	TotalVotes  int64      `json:"total_votes"`
}

type PollDetails struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Question    string     `json:"question"`
	CreatorName string     `json:"creator_name"`
	ShareToken  string     `json:"share_token"`
	EndDate     *time.Time `json:"end_date"`
	ShowResults bool       `json:"show_results_to_voters"`
	CreatedAt   time.Time  `json:"created_at"`
	Tally
}

// CreatePoll inserts a poll and its options as one unit. The share
// token is regenerated and the insert retried when it collides with an
// existing poll's token.
func (r *PollRegistry) CreatePoll(ownerID uint, title, question string, options []string, endDate *time.Time, showResults bool) (models.Poll, error) {
	if len(title) == 0 || len(question) == 0 {
		return models.Poll{}, invalidf("title and question are required")
	}
	if len(options) < 2 {
		return models.Poll{}, invalidf("a poll needs at least two options")
	}
	for _, text := range options {
		if len(text) == 0 {
			return models.Poll{}, invalidf("option text cannot be empty")
		}
	}

	for attempt := 0; ; attempt++ {
		token, err := newShareToken()
		if err != nil {
			return models.Poll{}, err
		}

		poll := models.Poll{
			Title:       title,
			Question:    question,
			ShareToken:  token,
			EndDate:     endDate,
			ShowResults: showResults,
			UserID:      ownerID,
			Options: lo.Map(options, func(text string, _ int) models.Option {
				return models.Option{Text: text}
			}),
		}

		err = r.polls.Create(&poll)
		if err == nil {
			return poll, nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < tokenRetryLimit {
			log.Warn().Int("attempt", attempt).Msg("Share token collision, regenerating...")
			continue
		}
		return models.Poll{}, err
	}
}

// ListPolls returns summaries of the owner's polls, newest first.
func (r *PollRegistry) ListPolls(ownerID uint) ([]PollSummary, error) {
	polls, err := r.polls.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}

	return lo.Map(polls, func(poll models.Poll, _ int) PollSummary {
		return PollSummary{
			ID:          poll.ID,
			Title:       poll.Title,
			Question:    poll.Question,
			EndDate:     poll.EndDate,
			ShareToken:  poll.ShareToken,
			CreatedAt:   poll.CreatedAt,
			OptionCount: len(poll.Options),
			TotalVotes:  lo.SumBy(poll.Options, func(o models.Option) int64 { return o.Votes }),
		}
	}), nil
}

// GetPollDetails returns the owner view of a poll. A poll owned by
// someone else is reported as not found, same as a missing one, so the
// endpoint does not leak which ids exist.
func (r *PollRegistry) GetPollDetails(ownerID, pollID uint) (PollDetails, error) {
	poll, err := r.polls.ByID(pollID)
	if err != nil {
		return PollDetails{}, err
	}
	if poll.UserID != ownerID {
		return PollDetails{}, ErrNotFound
	}

	options, err := r.votes.OptionsOf(poll.ID)
	if err != nil {
		return PollDetails{}, err
	}

	return newPollDetails(poll, options), nil
}

// GetPublicPoll resolves a poll by its share token for anonymous
// viewers. Poll metadata is immutable after creation, so the resolved
// row is cached; vote counts are always read fresh.
func (r *PollRegistry) GetPublicPoll(shareToken string) (PollDetails, error) {
	poll, err := r.resolveShared(shareToken)
	if err != nil {
		return PollDetails{}, err
	}

	options, err := r.votes.OptionsOf(poll.ID)
	if err != nil {
		return PollDetails{}, err
	}

	return newPollDetails(poll, options), nil
}

// DeletePoll removes a poll with everything referencing it. Unlike the
// details endpoint, ownership mismatch is reported as forbidden here:
// the caller has already proven the poll exists.
func (r *PollRegistry) DeletePoll(ownerID, pollID uint) error {
	poll, err := r.polls.ByID(pollID)
	if err != nil {
		return err
	}
	if poll.UserID != ownerID {
		return ErrForbidden
	}

	if err := r.polls.Delete(&poll); err != nil {
		return err
	}

	if r.cache != nil {
		if err := r.cache.Delete(context.Background(), sharedPollKey(poll.ShareToken)); err != nil {
			log.Warn().Err(err).Str("token", poll.ShareToken).Msg("Unable to evict shared poll cache entry...")
		}
	}

	return nil
}

func (r *PollRegistry) resolveShared(shareToken string) (models.Poll, error) {
	ctx := context.Background()

	if r.cache != nil {
		if hit, err := r.cache.Get(ctx, sharedPollKey(shareToken), new(models.Poll)); err == nil {
			return *hit.(*models.Poll), nil
		}
	}

	poll, err := r.polls.ByShareToken(shareToken)
	if err != nil {
		return poll, err
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, sharedPollKey(shareToken), poll,
			store.WithExpiration(sharedCacheTTL)); err != nil {
			log.Warn().Err(err).Msg("Unable to cache shared poll...")
		}
	}

	return poll, nil
}

func newPollDetails(poll models.Poll, options []models.Option) PollDetails {
	details := PollDetails{
		ID:          poll.ID,
		Title:       poll.Title,
		Question:    poll.Question,
		ShareToken:  poll.ShareToken,
		EndDate:     poll.EndDate,
		ShowResults: poll.ShowResults,
		CreatedAt:   poll.CreatedAt,
		Tally:       ProjectTally(options),
	}
	if poll.User != nil {
		details.CreatorName = poll.User.Username
	}
	return details
}

func sharedPollKey(token string) string {
	return fmt.Sprintf("shared-poll#%s", token)
}

func newShareToken() (string, error) {
	buf := make([]byte, shareTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
