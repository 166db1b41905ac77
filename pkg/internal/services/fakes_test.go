package services

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/openballot/openballot/pkg/internal/models"
	"gorm.io/gorm"
)

// fakeStore is an in-memory stand-in for the gorm stores. It enforces
// the same constraints the real schema does: unique share tokens and a
// unique (poll_id, voter_email) pair, checked atomically under one
// mutex so concurrent Apply calls race exactly like two transactions
// hitting the unique index.
type fakeStore struct {
	mu sync.Mutex

	pollSeq   uint
	optionSeq uint
	voteSeq   uint

	polls map[uint]*models.Poll
	votes map[string]models.Vote

	// forceTokenCollisions makes the next N Create calls fail the way a
	// share token collision does.
	forceTokenCollisions int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		polls: make(map[uint]*models.Poll),
		votes: make(map[string]models.Vote),
	}
}

func voteKey(pollID uint, email string) string {
	return fmt.Sprintf("%d/%s", pollID, email)
}

func (f *fakeStore) Create(poll *models.Poll) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.forceTokenCollisions > 0 {
		f.forceTokenCollisions--
		return gorm.ErrDuplicatedKey
	}
	for _, existing := range f.polls {
		if existing.ShareToken == poll.ShareToken {
			return gorm.ErrDuplicatedKey
		}
	}

	f.pollSeq++
	poll.ID = f.pollSeq
	poll.CreatedAt = time.Now()
	for i := range poll.Options {
		f.optionSeq++
		poll.Options[i].ID = f.optionSeq
		poll.Options[i].PollID = poll.ID
	}

	stored := *poll
	stored.Options = append([]models.Option(nil), poll.Options...)
	f.polls[poll.ID] = &stored
	return nil
}

func (f *fakeStore) ByID(id uint) (models.Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot(id)
}

func (f *fakeStore) ByShareToken(token string) (models.Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for id, poll := range f.polls {
		if poll.ShareToken == token {
			return f.snapshot(id)
		}
	}
	return models.Poll{}, ErrNotFound
}

func (f *fakeStore) ListByOwner(ownerID uint) ([]models.Poll, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.Poll
	for id, poll := range f.polls {
		if poll.UserID == ownerID {
			snap, _ := f.snapshot(id)
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeStore) Delete(poll *models.Poll) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.polls[poll.ID]; !ok {
		return ErrNotFound
	}
	delete(f.polls, poll.ID)
	for key, vote := range f.votes {
		if vote.PollID == poll.ID {
			delete(f.votes, key)
		}
	}
	return nil
}

func (f *fakeStore) HasVoted(pollID uint, voterEmail string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.votes[voteKey(pollID, voterEmail)]
	return ok, nil
}

func (f *fakeStore) Apply(vote *models.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	poll, ok := f.polls[vote.PollID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := f.votes[voteKey(vote.PollID, vote.VoterEmail)]; ok {
		return gorm.ErrDuplicatedKey
	}

	target := -1
	for i := range poll.Options {
		if poll.Options[i].ID == vote.OptionID {
			target = i
			break
		}
	}
	if target < 0 {
		return ErrInvalidOption
	}

	f.voteSeq++
	vote.ID = f.voteSeq
	vote.CreatedAt = time.Now()
	f.votes[voteKey(vote.PollID, vote.VoterEmail)] = *vote
	poll.Options[target].Votes++
	return nil
}

func (f *fakeStore) OptionsOf(pollID uint) ([]models.Option, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	poll, ok := f.polls[pollID]
	if !ok {
		return nil, nil
	}
	return append([]models.Option(nil), poll.Options...), nil
}

// voteCount is a test helper: the canonical count straight from the
// vote records, for checking the cached counters against.
func (f *fakeStore) voteCount(pollID uint) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, vote := range f.votes {
		if vote.PollID == pollID {
			count++
		}
	}
	return count
}

func (f *fakeStore) snapshot(id uint) (models.Poll, error) {
	poll, ok := f.polls[id]
	if !ok {
		return models.Poll{}, ErrNotFound
	}
	snap := *poll
	snap.Options = append([]models.Option(nil), poll.Options...)
	return snap, nil
}

// fakeBus records broadcasts for assertions.
type fakeBus struct {
	mu     sync.Mutex
	events []VoteUpdate
}

func (b *fakeBus) Broadcast(_ string, event any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if update, ok := event.(VoteUpdate); ok {
		b.events = append(b.events, update)
	}
}

func (b *fakeBus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}
