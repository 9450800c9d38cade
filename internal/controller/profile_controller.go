package controller

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/benbeisheim/dama-backend/internal/middleware"
	"github.com/benbeisheim/dama-backend/internal/profile"
)

const maxUsernameLen = 24

type ProfileController struct {
	profiles *profile.Store
}

func NewProfileController(profiles *profile.Store) *ProfileController {
	return &ProfileController{profiles: profiles}
}

func (pc *ProfileController) Register(r fiber.Router) {
	r.Get("/profile", pc.GetProfile)
	r.Post("/profile", pc.UpdateProfile)
	r.Get("/leaderboard", pc.Leaderboard)
}

func (pc *ProfileController) GetProfile(c *fiber.Ctx) error {
	return c.JSON(pc.profiles.Get(middleware.PlayerID(c)))
}

type updateProfileRequest struct {
	Username string `json:"username"`
}

func (pc *ProfileController) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	name := strings.TrimSpace(req.Username)
	if name == "" || len(name) > maxUsernameLen {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "username must be 1-24 characters",
		})
	}
	return c.JSON(pc.profiles.SetUsername(middleware.PlayerID(c), name))
}

func (pc *ProfileController) Leaderboard(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"players": pc.profiles.Leaderboard(middleware.PlayerID(c)),
	})
}
