// Package server exposes games over a JSON HTTP API.
package server

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// Options configures the HTTP app.
type Options struct {
	AllowOrigins string // CORS origins; empty disables CORS
	Logger       *log.Logger
}

// New builds the fiber app with the game routes.
func New(manager *GameManager, opts Options) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "chessplay",
	})

	if opts.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: opts.AllowOrigins,
			AllowHeaders: "Origin, Content-Type, Accept",
			AllowMethods: "GET, POST, DELETE, OPTIONS",
		}))
	}
	if opts.Logger != nil {
		app.Use(func(c *fiber.Ctx) error {
			start := time.Now()
			err := c.Next()
			opts.Logger.Printf("%s %s %d %v", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
			return err
		})
	}

	gameController := NewGameController(manager)

	api := app.Group("/api")
	games := api.Group("/games")
	games.Post("/", gameController.CreateGame)
	games.Get("/", gameController.ListGames)
	games.Get("/:id", gameController.GetGame)
	games.Post("/:id/move", gameController.Move)
	games.Post("/:id/ai", gameController.AIMove)
	games.Post("/:id/undo", gameController.Undo)
	games.Delete("/:id", gameController.DeleteGame)

	return app
}
