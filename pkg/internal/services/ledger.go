package services

import (
	"errors"
	"time"

	"github.com/openballot/openballot/pkg/internal/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// VoteStore is the persistence surface of the vote ledger. Apply must
// insert the vote and bump the target option's cached counter in a
// single transaction, and must let the storage-level unique violation
// on (poll_id, voter_email) escape as gorm.ErrDuplicatedKey.
type VoteStore interface {
	HasVoted(pollID uint, voterEmail string) (bool, error)
	Apply(vote *models.Vote) error
	OptionsOf(pollID uint) ([]models.Option, error)
}

// Broadcaster pushes a tally update to everyone watching a poll's share
// token. Delivery is best effort and must never fail the caller.
type Broadcaster interface {
	Broadcast(shareToken string, event any)
}

// VoteUpdate is emitted on the poll's live channel after every
// committed vote.
type VoteUpdate struct {
	Event      string        `json:"event"`
	PollID     uint          `json:"poll_id"`
	ShareToken string        `json:"share_token"`
	Options    []OptionTally `json:"options"`
	TotalVotes int64         `json:"total_votes"`
}

// VoteLedger admits or rejects ballots and applies admitted ones
// exactly once per (poll, voter email) pair.
type VoteLedger struct {
	polls PollStore
	votes VoteStore
	bus   Broadcaster

	now func() time.Time
}

func NewVoteLedger(polls PollStore, votes VoteStore, bus Broadcaster) *VoteLedger {
	return &VoteLedger{polls: polls, votes: votes, bus: bus, now: time.Now}
}

type Ballot struct {
	ShareToken string
	VoterName  string
	VoterEmail string
	OptionID   uint
	IPAddress  string
}

// CastVote runs the full admission pipeline: resolve the poll, check it
// is still open, check the option belongs to it, reject voters that
// already cast a ballot, then apply the vote atomically. The duplicate
// check before Apply only shapes the common-case error; the unique
// index is what actually closes the race when two ballots for the same
// voter commit concurrently, and the losing insert is reported as
// ErrAlreadyVoted just the same.
//
// The returned tally reflects the poll after this vote. It is
// broadcast to the poll's subscribers once the transaction committed.
func (l *VoteLedger) CastVote(ballot Ballot) (Tally, error) {
	if len(ballot.VoterName) == 0 || len(ballot.VoterEmail) == 0 {
		return Tally{}, invalidf("voter name and email are required")
	}

	poll, err := l.polls.ByShareToken(ballot.ShareToken)
	if err != nil {
		return Tally{}, err
	}

	if poll.Closed(l.now()) {
		return Tally{}, ErrPollClosed
	}

	if !lo.ContainsBy(poll.Options, func(o models.Option) bool { return o.ID == ballot.OptionID }) {
		return Tally{}, ErrInvalidOption
	}

	if voted, err := l.votes.HasVoted(poll.ID, ballot.VoterEmail); err != nil {
		return Tally{}, err
	} else if voted {
		return Tally{}, ErrAlreadyVoted
	}

	vote := models.Vote{
		PollID:     poll.ID,
		OptionID:   ballot.OptionID,
		VoterName:  ballot.VoterName,
		VoterEmail: ballot.VoterEmail,
		IPAddress:  ballot.IPAddress,
	}

	if err := l.votes.Apply(&vote); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return Tally{}, ErrAlreadyVoted
		}
		return Tally{}, err
	}

	options, err := l.votes.OptionsOf(poll.ID)
	if err != nil {
		return Tally{}, err
	}
	tally := ProjectTally(options)

	if l.bus != nil {
		l.bus.Broadcast(poll.ShareToken, VoteUpdate{
			Event:      "vote_update",
			PollID:     poll.ID,
			ShareToken: poll.ShareToken,
			Options:    tally.Options,
			TotalVotes: tally.TotalVotes,
		})
	}

	return tally, nil
}
