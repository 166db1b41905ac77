package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/openballot/openballot/pkg/internal/http/exts"
)

func doRegister(c *fiber.Ctx) error {
	var data struct {
		Username string `json:"username" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=6"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	user, err := accounts.Register(data.Username, data.Email, data.Password)
	if err != nil {
		return mapServiceError(err)
	}

	token, err := gateway.Issue(user.ID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "User registered successfully",
		"token":    token,
		"user_id":  user.ID,
		"username": user.Username,
	})
}

func doLogin(c *fiber.Ctx) error {
	var data struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := exts.BindAndValidate(c, &data); err != nil {
		return err
	}

	user, err := accounts.Authenticate(data.Email, data.Password)
	if err != nil {
		return mapServiceError(err)
	}

	token, err := gateway.Issue(user.ID)
	if err != nil {
		return mapServiceError(err)
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}
