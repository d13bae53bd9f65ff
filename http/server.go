// http/server.go
package http

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ViniZap4/stride-server/auth"
	"github.com/ViniZap4/stride-server/domain"
	"github.com/ViniZap4/stride-server/metrics"
	"github.com/ViniZap4/stride-server/mirror"
	"github.com/ViniZap4/stride-server/organizer"
	"github.com/ViniZap4/stride-server/ws"
)

// Accounts registers and authenticates remote sync accounts.
type Accounts interface {
	Register(ctx context.Context, email, password string) (mirror.Account, error)
	Authenticate(ctx context.Context, email, password string) (mirror.Account, error)
}

// Mirror attaches the local store to a remote account.
type Mirror interface {
	Attach(ctx context.Context, account string) error
	Detach()
	Account() string
	Pending() int
}

type Server struct {
	org      *organizer.Organizer
	auth     *auth.Service
	hub      *ws.Hub
	metrics  *metrics.Metrics
	accounts Accounts
	mirror   Mirror
	origins  string
	log      zerolog.Logger
}

type Options struct {
	Auth    *auth.Service
	Hub     *ws.Hub
	Metrics *metrics.Metrics
	// Accounts and Mirror are nil when no database is configured; the sync
	// endpoints then answer 503.
	Accounts Accounts
	Mirror   Mirror
	// CORSOrigins is a comma separated list, "*" by default.
	CORSOrigins string
	Logger      zerolog.Logger
}

func NewServer(org *organizer.Organizer, opts Options) *Server {
	if opts.CORSOrigins == "" {
		opts.CORSOrigins = "*"
	}
	return &Server{
		org:      org,
		auth:     opts.Auth,
		hub:      opts.Hub,
		metrics:  opts.Metrics,
		accounts: opts.Accounts,
		mirror:   opts.Mirror,
		origins:  opts.CORSOrigins,
		log:      opts.Logger.With().Str("component", "http").Logger(),
	}
}

// App builds the fiber application with every route mounted.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "stride",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: s.origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Content-Type, Authorization",
	}))
	app.Use(s.requestLog)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if s.metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}
	if s.hub != nil {
		app.Get("/ws", ws.Upgrade, s.auth.Middleware(), s.hub.Handler())
	}

	app.Post("/api/auth/login", s.HandleLogin)

	api := app.Group("/api", s.auth.Middleware())

	api.Get("/tree", s.HandleTree)
	api.Get("/folders", s.HandleFolders)
	api.Get("/folders/children", s.HandleChildren)
	api.Post("/folders", s.HandleCreateFolder)
	api.Put("/folders/rename", s.HandleRenameFolder)
	api.Post("/folders/move", s.HandleMoveFolder)
	api.Post("/folders/duplicate", s.HandleDuplicateFolder)
	api.Post("/folders/pin", s.HandlePinFolder)
	api.Delete("/folders", s.HandleDeleteFolder)

	api.Post("/notes", s.HandleCreateNote)
	api.Get("/notes/recent", s.HandleRecentNotes)
	api.Get("/notes/:id", s.HandleGetNote)
	api.Put("/notes/:id", s.HandleUpdateNote)
	api.Post("/notes/:id/open", s.HandleOpenNote)
	api.Post("/notes/:id/move", s.HandleMoveNote)
	api.Post("/notes/:id/duplicate", s.HandleDuplicateNote)
	api.Post("/notes/:id/format", s.HandleFormatNote)
	api.Get("/notes/:id/render", s.HandleRenderNote)
	api.Delete("/notes/:id", s.HandleDeleteNote)

	api.Get("/search", s.HandleSearch)
	api.Get("/search/history", s.HandleSearchHistory)
	api.Delete("/search/history", s.HandleClearSearchHistory)
	api.Delete("/search/history/:term", s.HandleRemoveSearchTerm)

	api.Get("/trash", s.HandleTrash)
	api.Post("/trash/restore", s.HandleRestoreMany)
	api.Post("/trash/purge", s.HandlePurgeTrash)
	api.Post("/trash/:id/restore", s.HandleRestore)
	api.Delete("/trash/:id", s.HandleDeleteTrash)
	api.Delete("/trash", s.HandleDeleteManyTrash)

	api.Get("/bookmarks", s.HandleBookmarks)
	api.Post("/bookmarks", s.HandleAddBookmark)
	api.Delete("/bookmarks/:id", s.HandleDeleteBookmark)

	api.Get("/todos", s.HandleTodos)
	api.Post("/todos", s.HandleAddTodo)
	api.Post("/todos/:id/toggle", s.HandleToggleTodo)
	api.Delete("/todos/:id", s.HandleDeleteTodo)

	api.Get("/dictionary", s.HandleDictionary)
	api.Post("/dictionary", s.HandleAddEntry)
	api.Get("/dictionary/:id", s.HandleGetEntry)
	api.Put("/dictionary/:id", s.HandleUpdateEntry)
	api.Post("/dictionary/:id/pin", s.HandlePinEntry)
	api.Delete("/dictionary/:id", s.HandleDeleteEntry)

	api.Get("/streak", s.HandleStreak)
	api.Put("/streak/rest-days", s.HandleSetRestDays)
	api.Post("/streak/rest-days/:day", s.HandleToggleRestDay)
	api.Post("/streak/reset", s.HandleResetStreak)

	api.Get("/sync/status", s.HandleSyncStatus)
	api.Post("/sync/register", s.HandleSyncRegister)
	api.Post("/sync/login", s.HandleSyncLogin)
	api.Delete("/sync/session", s.HandleSyncLogout)

	return app
}

func (s *Server) HandleLogin(c *fiber.Ctx) error {
	var req struct {
		Password string `json:"password"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	token, expires, err := s.auth.Login(req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"token": token, "expiresAt": expires})
}

// handleError maps domain errors to status codes. The body is always
// {"error": message}.
func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var (
		fe  *fiber.Error
		dup *domain.DuplicateNameError
		nf  *domain.NotFoundError
		ve  *domain.ValidationError
	)
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.As(err, &dup), errors.Is(err, mirror.ErrAccountExists):
		code = fiber.StatusConflict
	case errors.As(err, &nf):
		code = fiber.StatusNotFound
	case errors.As(err, &ve):
		code = fiber.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidPassword), errors.Is(err, mirror.ErrInvalidCredentials):
		code = fiber.StatusUnauthorized
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) requestLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	if err != nil {
		// Let the error handler set the final status before logging.
		if herr := s.handleError(c, err); herr != nil {
			return herr
		}
	}
	s.log.Debug().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("request")
	return nil
}

func bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body: "+err.Error())
	}
	return nil
}

// queryPath reads a folder path from repeated "path" query parameters.
func queryPath(c *fiber.Ctx) []string {
	var path []string
	for _, v := range c.Context().QueryArgs().PeekMulti("path") {
		path = append(path, string(v))
	}
	return path
}
