package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rlaxodnjs199/natours-api/internal/config"
	"github.com/rlaxodnjs199/natours-api/internal/mailer"
	"github.com/rlaxodnjs199/natours-api/internal/models"
)

var (
	cfg  *config.Config
	mail mailer.Service
)

// Init wires the handler package to its collaborators. Called once from
// main before any route is registered.
func Init(c *config.Config, m mailer.Service) {
	cfg = c
	mail = m
}

const localUserKey = "user"

// CurrentUser returns the user resolved by Protect, or nil on
// unauthenticated routes.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUserKey).(*models.User)
	return user
}
