package services

import (
	"math"

	"github.com/openballot/openballot/pkg/internal/models"
	"github.com/samber/lo"
)

type OptionTally struct {
	ID         uint    `json:"id"`
	Text       string  `json:"option_text"`
	Votes      int64   `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type Tally struct {
	Options    []OptionTally `json:"options"`
	TotalVotes int64         `json:"total_votes"`
}

// ProjectTally derives per-option counts and percentages from the given
// options. Percentages are rounded half away from zero to one decimal
// place and are not adjusted to sum to exactly 100; when no votes have
// been cast every percentage is 0.0.
func ProjectTally(options []models.Option) Tally {
	total := lo.SumBy(options, func(o models.Option) int64 { return o.Votes })

	entries := lo.Map(options, func(o models.Option, _ int) OptionTally {
		var pct float64
		if total > 0 {
			pct = math.Round(float64(o.Votes)/float64(total)*1000) / 10
		}
		return OptionTally{
			ID:         o.ID,
			Text:       o.Text,
			Votes:      o.Votes,
			Percentage: pct,
		}
	})

	return Tally{Options: entries, TotalVotes: total}
}
