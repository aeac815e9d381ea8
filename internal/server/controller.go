package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/hailam/chessplay/internal/board"
	"github.com/hailam/chessplay/internal/engine"
)

// GameController serves the game API.
type GameController struct {
	manager *GameManager
}

func NewGameController(manager *GameManager) *GameController {
	return &GameController{manager: manager}
}

type createRequest struct {
	Board      string `json:"board"`
	Difficulty string `json:"difficulty"`
}

type moveRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	var req createRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
	}

	difficulty, err := engine.ParseDifficulty(req.Difficulty)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	g, err := gc.manager.Create(req.Board, difficulty)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(gc.manager.View(g))
}

func (gc *GameController) ListGames(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"games": gc.manager.List(),
	})
}

func (gc *GameController) GetGame(c *fiber.Ctx) error {
	g, err := gc.manager.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(gc.manager.View(g))
}

func (gc *GameController) Move(c *fiber.Ctx) error {
	g, err := gc.manager.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	var req moveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	view, err := gc.manager.Move(g, req.From, req.To)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

func (gc *GameController) AIMove(c *fiber.Ctx) error {
	g, err := gc.manager.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	view, err := gc.manager.AIMove(g)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

func (gc *GameController) Undo(c *fiber.Ctx) error {
	g, err := gc.manager.Get(c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}

	view, err := gc.manager.Undo(g)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(view)
}

func (gc *GameController) DeleteGame(c *fiber.Ctx) error {
	if err := gc.manager.Delete(c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game deleted",
	})
}

// errorResponse maps domain errors to HTTP statuses.
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, ErrGameNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, ErrIllegalMove), errors.Is(err, board.ErrOutOfRange):
		status = fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrGameOver), errors.Is(err, board.ErrEmptyHistory), errors.Is(err, engine.ErrNoLegalMoves):
		status = fiber.StatusConflict
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}
