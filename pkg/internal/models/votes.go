package models

import "time"

// Vote is the canonical record of a single ballot. The cached Votes
// counter on Option is a projection of these rows and is only ever
// updated in the same transaction that inserts one.
//
// Votes are never soft deleted; the unique index on (poll_id,
// voter_email) is the storage-level backstop against duplicate ballots.
type Vote struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	PollID     uint      `json:"poll_id" gorm:"uniqueIndex:uniq_votes_poll_voter"`
	OptionID   uint      `json:"option_id" gorm:"index"`
	VoterName  string    `json:"voter_name"`
	VoterEmail string    `json:"voter_email" gorm:"uniqueIndex:uniq_votes_poll_voter"`
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
}
