// http/sync.go
package http

import (
	"github.com/gofiber/fiber/v2"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) syncEnabled() error {
	if s.mirror == nil || s.accounts == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "remote sync is not configured")
	}
	return nil
}

func (s *Server) HandleSyncStatus(c *fiber.Ctx) error {
	if s.mirror == nil {
		return c.JSON(fiber.Map{"enabled": false})
	}
	return c.JSON(fiber.Map{
		"enabled": true,
		"account": s.mirror.Account(),
		"pending": s.mirror.Pending(),
	})
}

func (s *Server) HandleSyncRegister(c *fiber.Ctx) error {
	if err := s.syncEnabled(); err != nil {
		return err
	}
	var req credentials
	if err := bind(c, &req); err != nil {
		return err
	}
	acct, err := s.accounts.Register(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	if err := s.attach(c, acct.ID); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(acct)
}

func (s *Server) HandleSyncLogin(c *fiber.Ctx) error {
	if err := s.syncEnabled(); err != nil {
		return err
	}
	var req credentials
	if err := bind(c, &req); err != nil {
		return err
	}
	acct, err := s.accounts.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	if err := s.attach(c, acct.ID); err != nil {
		return err
	}
	return c.JSON(acct)
}

func (s *Server) HandleSyncLogout(c *fiber.Ctx) error {
	if err := s.syncEnabled(); err != nil {
		return err
	}
	s.mirror.Detach()
	s.log.Info().Msg("remote sync detached")
	return c.SendStatus(fiber.StatusNoContent)
}

// attach hydrates the local store from the account and reloads the
// organizer so the pulled state becomes visible.
func (s *Server) attach(c *fiber.Ctx, account string) error {
	if err := s.mirror.Attach(c.UserContext(), account); err != nil {
		return err
	}
	s.org.Reload()
	s.log.Info().Str("account", account).Msg("remote sync attached")
	return nil
}
