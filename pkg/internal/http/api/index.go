package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/openballot/openballot/pkg/internal/bus"
	"github.com/openballot/openballot/pkg/internal/security"
	"github.com/openballot/openballot/pkg/internal/services"
	"github.com/rs/zerolog/log"
)

// Deps carries everything the handlers need; MapAPIs stows them in
// package scope so handlers stay plain fiber funcs.
type Deps struct {
	Registry *services.PollRegistry
	Ledger   *services.VoteLedger
	Accounts *services.UserAccountService
	Gateway  *security.Gateway
	Hub      *bus.Hub
}

var (
	registry *services.PollRegistry
	ledger   *services.VoteLedger
	accounts *services.UserAccountService
	gateway  *security.Gateway
	hub      *bus.Hub
)

func MapAPIs(app *fiber.App, deps Deps) {
	registry = deps.Registry
	ledger = deps.Ledger
	accounts = deps.Accounts
	gateway = deps.Gateway
	hub = deps.Hub

	api := app.Group("/api")
	{
		auth := api.Group("/auth").Name("Auth API")
		{
			auth.Post("/register", doRegister)
			auth.Post("/login", doLogin)
		}

		polls := api.Group("/polls").Name("Polls API")
		{
			polls.Post("/", authenticated, createPoll)
			polls.Get("/", authenticated, listPolls)
			polls.Get("/:pollId/details", authenticated, getPollDetails)
			polls.Delete("/:pollId", authenticated, deletePoll)

			polls.Get("/:shareToken", getSharedPoll)
			polls.Post("/:shareToken/vote", castVote)
			polls.Use("/:shareToken/live", upgradeRequired)
			polls.Get("/:shareToken/live", liveUpdates())
		}
	}
}

// mapServiceError turns the service error taxonomy into HTTP statuses.
// Unknown errors are logged with full detail and reported generically.
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrInvalid):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "poll not found")
	case errors.Is(err, services.ErrForbidden):
		return fiber.NewError(fiber.StatusForbidden, "you do not own this poll")
	case errors.Is(err, services.ErrPollClosed),
		errors.Is(err, services.ErrInvalidOption):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrAlreadyVoted),
		errors.Is(err, services.ErrExists):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case errors.Is(err, services.ErrBadCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	default:
		log.Error().Err(err).Msg("An error occurred when accessing storage...")
		return fiber.NewError(fiber.StatusInternalServerError, "internal storage error")
	}
}
