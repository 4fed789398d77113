// Package control exposes the orchestrator's pause/resume/stop and
// state/standings read surface over HTTP, using the same fiber stack and
// auth-gate shape the teacher's web server and handler use.
package control

import (
	"crypto/subtle"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"tourney/internal/orchestrator"
	"tourney/internal/runner"
	"tourney/internal/standings"
)

// Orchestrator is the subset of orchestrator.Orchestrator the control
// surface depends on.
type Orchestrator interface {
	StateSnapshot() orchestrator.StateSnapshot
	StandingsSnapshot() []standings.Row
	Control() *runner.Control
}

// Server is the fiber app backing the control surface.
type Server struct {
	app           *fiber.App
	operatorToken string
}

// New builds a control server bound to orch. operatorToken gates the
// mutating routes; an empty token disables those routes entirely rather
// than accepting unauthenticated mutation.
func New(orch Orchestrator, operatorToken string) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
	})
	app.Use(logger.New(logger.Config{
		Format: "${time} CONTROL ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New())

	s := &Server{app: app, operatorToken: operatorToken}

	app.Get("/state", func(c *fiber.Ctx) error {
		return c.JSON(orch.StateSnapshot())
	})
	app.Get("/standings", func(c *fiber.Ctx) error {
		return c.JSON(orch.StandingsSnapshot())
	})

	app.Post("/pause", s.requireOperator, func(c *fiber.Ctx) error {
		orch.Control().Pause()
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Post("/resume", s.requireOperator, func(c *fiber.Ctx) error {
		orch.Control().Resume()
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Post("/stop", s.requireOperator, func(c *fiber.Ctx) error {
		orch.Control().RequestStop()
		return c.JSON(fiber.Map{"ok": true})
	})

	return s
}

// requireOperator gates mutating routes with a constant-time bearer token
// comparison against the single configured operator token.
func (s *Server) requireOperator(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if s.operatorToken == "" || token == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(s.operatorToken)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error: "missing or invalid operator token",
			Code:  ErrUnauthorized,
		})
	}
	return c.Next()
}

// Listen starts the control server on addr (host:port), blocking until the
// listener fails or is closed.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the control server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
