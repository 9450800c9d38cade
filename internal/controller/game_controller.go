package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/benbeisheim/dama-backend/internal/advice"
	"github.com/benbeisheim/dama-backend/internal/checkers"
	"github.com/benbeisheim/dama-backend/internal/middleware"
	"github.com/benbeisheim/dama-backend/internal/model"
	"github.com/benbeisheim/dama-backend/internal/service"
)

type GameController struct {
	gameService *service.GameService
	log         zerolog.Logger
}

func NewGameController(gameService *service.GameService, log zerolog.Logger) *GameController {
	return &GameController{gameService: gameService, log: log}
}

// Register mounts the game routes on r.
func (gc *GameController) Register(r fiber.Router) {
	r.Post("/matchmaking/join", gc.JoinMatchmaking)
	r.Post("/create", gc.CreateGame)
	r.Post("/join/:gameId", gc.JoinGame)
	r.Get("/:gameId", gc.GetGameState)
	r.Get("/:gameId/moves", gc.LegalMoves)
	r.Post("/:gameId/move", gc.MakeMove)
	r.Post("/:gameId/undo", gc.Undo)
	r.Post("/:gameId/reset", gc.Reset)
	r.Post("/:gameId/resign", gc.Resign)
	r.Get("/:gameId/hint", gc.Hint)
	r.Get("/:gameId/advice", gc.Advice)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, model.ErrNotInGame):
		return fiber.StatusForbidden
	case errors.Is(err, model.ErrIllegalMove),
		errors.Is(err, model.ErrOutOfBounds),
		errors.Is(err, model.ErrInvalidMode):
		return fiber.StatusBadRequest
	case errors.Is(err, model.ErrGameFull),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrGameOver),
		errors.Is(err, model.ErrUndoUnavailable),
		errors.Is(err, model.ErrAlreadyQueued):
		return fiber.StatusConflict
	}
	return fiber.StatusInternalServerError
}

func (gc *GameController) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		gc.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

type createGameRequest struct {
	Mode string `json:"mode"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createGameRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid request body",
			})
		}
	}
	mode, err := model.ParseGameMode(req.Mode)
	if err != nil {
		return gc.fail(c, err)
	}

	gameID, side, err := gc.gameService.CreateGame(middleware.PlayerID(c), mode)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
		"side":    side,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	side, err := gc.gameService.JoinGame(c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return gc.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"side":    side,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}

	return c.JSON(gameState)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	if err := gc.gameService.JoinMatchmaking(middleware.PlayerID(c)); err != nil {
		return gc.fail(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}

func (gc *GameController) LegalMoves(c *fiber.Ctx) error {
	from := checkers.Position{Row: c.QueryInt("row", -1), Col: c.QueryInt("col", -1)}
	moves, err := gc.gameService.LegalMoves(c.Params("gameId"), from)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"moves": moves,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var req model.MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid move body",
		})
	}
	state, err := gc.gameService.HandleMove(c.Params("gameId"), middleware.PlayerID(c), req)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Undo(c *fiber.Ctx) error {
	state, err := gc.gameService.Undo(c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Reset(c *fiber.Ctx) error {
	state, err := gc.gameService.Reset(c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Resign(c *fiber.Ctx) error {
	state, err := gc.gameService.Resign(c.Params("gameId"), middleware.PlayerID(c))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Hint(c *fiber.Ctx) error {
	move, err := gc.gameService.Hint(c.Params("gameId"))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"move": move,
	})
}

// Advice answers with a fallback sentence when the advisor is unavailable.
func (gc *GameController) Advice(c *fiber.Ctx) error {
	text, err := gc.gameService.Advice(c.UserContext(), c.Params("gameId"), middleware.PlayerID(c))
	if errors.Is(err, advice.ErrUnavailable) {
		gc.log.Warn().Err(err).Msg("advice unavailable")
		text, err = advice.FallbackText, nil
	}
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"text": text,
	})
}
