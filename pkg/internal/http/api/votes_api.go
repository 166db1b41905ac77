package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/openballot/openballot/pkg/internal/http/exts"
	"github.com/openballot/openballot/pkg/internal/services"
)

func castVote(c *fiber.Ctx) error {
	var data struct {
		VoterName      string `json:"voter_name" validate:"required"`
		VoterEmail     string `json:"voter_email" validate:"required,email"`
		SelectedOption uint   `json:"selected_option" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	tally, err := ledger.CastVote(services.Ballot{
		ShareToken: c.Params("shareToken"),
		VoterName:  data.VoterName,
		VoterEmail: data.VoterEmail,
		OptionID:   data.SelectedOption,
		IPAddress:  c.IP(),
	})
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"message":     "Vote recorded successfully",
		"options":     tally.Options,
		"total_votes": tally.TotalVotes,
	})
}
