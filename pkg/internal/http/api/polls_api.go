package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/openballot/openballot/pkg/internal/http/exts"
)

func createPoll(c *fiber.Ctx) error {
	userID, err := principalID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	var data struct {
		Title       string   `json:"title" validate:"required"`
		Question    string   `json:"question" validate:"required"`
		Options     []string `json:"options" validate:"required,min=2,dive,required"`
		EndDate     *string  `json:"end_date"`
		ShowResults bool     `json:"show_results"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	var endDate *time.Time
	if data.EndDate != nil && len(*data.EndDate) > 0 {
		parsed, err := time.ParseInLocation(time.DateOnly, *data.EndDate, time.UTC)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "end_date must be formatted as YYYY-MM-DD")
		}
		endDate = &parsed
	}

	poll, err := registry.CreatePoll(userID, data.Title, data.Question, data.Options, endDate, data.ShowResults)
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"poll_id":     poll.ID,
		"share_token": poll.ShareToken,
		"share_url":   fmt.Sprintf("/poll/%s", poll.ShareToken),
	})
}

func listPolls(c *fiber.Ctx) error {
	userID, err := principalID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	polls, err := registry.ListPolls(userID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"polls": polls})
}

func getPollDetails(c *fiber.Ctx) error {
	userID, err := principalID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	pollID, err := c.ParamsInt("pollId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "poll id must be a number")
	}

	details, err := registry.GetPollDetails(userID, uint(pollID))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(details)
}

func deletePoll(c *fiber.Ctx) error {
	userID, err := principalID(c)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}

	pollID, err := c.ParamsInt("pollId")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "poll id must be a number")
	}

	if err := registry.DeletePoll(userID, uint(pollID)); err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{"message": "Poll deleted successfully"})
}

func getSharedPoll(c *fiber.Ctx) error {
	details, err := registry.GetPublicPoll(c.Params("shareToken"))
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"poll": fiber.Map{
			"id":                     details.ID,
			"title":                  details.Title,
			"question":               details.Question,
			"creator_name":           details.CreatorName,
			"end_date":               details.EndDate,
			"show_results_to_voters": details.ShowResults,
			"created_at":             details.CreatedAt,
		},
		"options":     details.Options,
		"total_votes": details.TotalVotes,
	})
}
