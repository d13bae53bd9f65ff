// http/collections.go
package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

type idsRequest struct {
	IDs []string `json:"ids"`
}

func (s *Server) HandleSearch(c *fiber.Ctx) error {
	commit := c.QueryBool("commit", false)
	return c.JSON(s.org.Search(c.Query("q"), commit))
}

func (s *Server) HandleSearchHistory(c *fiber.Ctx) error {
	return c.JSON(s.org.SearchHistory())
}

func (s *Server) HandleRemoveSearchTerm(c *fiber.Ctx) error {
	s.org.RemoveSearchTerm(c.Params("term"))
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) HandleClearSearchHistory(c *fiber.Ctx) error {
	s.org.ClearSearchHistory()
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) HandleTrash(c *fiber.Ctx) error {
	return c.JSON(s.org.Trash())
}

func (s *Server) HandleRestore(c *fiber.Ctx) error {
	if err := s.org.RestoreTrash(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) HandleRestoreMany(c *fiber.Ctx) error {
	var req idsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.org.RestoreTrashMany(req.IDs); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) HandleDeleteTrash(c *fiber.Ctx) error {
	if err := s.org.DeleteTrash(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) HandleDeleteManyTrash(c *fiber.Ctx) error {
	var req idsRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": s.org.DeleteTrashMany(req.IDs)})
}

func (s *Server) HandlePurgeTrash(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"purged": s.org.PurgeTrash()})
}

func (s *Server) HandleBookmarks(c *fiber.Ctx) error {
	return c.JSON(s.org.Bookmarks())
}

func (s *Server) HandleAddBookmark(c *fiber.Ctx) error {
	var req struct {
		Title string `json:"title"`
		Color string `json:"color"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	b, err := s.org.AddBookmark(req.Title, req.Color)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(b)
}

func (s *Server) HandleDeleteBookmark(c *fiber.Ctx) error {
	if err := s.org.DeleteBookmark(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleTodos lists todos, optionally filtered by ?status=pending|completed.
func (s *Server) HandleTodos(c *fiber.Ctx) error {
	return c.JSON(s.org.Todos(c.Query("status")))
}

func (s *Server) HandleAddTodo(c *fiber.Ctx) error {
	var req struct {
		Title string `json:"title"`
		Date  string `json:"date"`
		Time  string `json:"time"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	date := time.Now()
	if req.Date != "" {
		d, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "date must be YYYY-MM-DD")
		}
		date = d
	}
	item, err := s.org.AddTodo(req.Title, date, req.Time)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *Server) HandleToggleTodo(c *fiber.Ctx) error {
	item, err := s.org.ToggleTodo(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (s *Server) HandleDeleteTodo(c *fiber.Ctx) error {
	if err := s.org.DeleteTodo(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

type entryRequest struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
}

func (s *Server) HandleDictionary(c *fiber.Ctx) error {
	return c.JSON(s.org.Dictionary(c.Query("q")))
}

func (s *Server) HandleGetEntry(c *fiber.Ctx) error {
	e, err := s.org.DictionaryEntry(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (s *Server) HandleAddEntry(c *fiber.Ctx) error {
	var req entryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	e, err := s.org.AddEntry(req.Word, req.Definition)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

func (s *Server) HandleUpdateEntry(c *fiber.Ctx) error {
	var req entryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	e, err := s.org.UpdateEntry(c.Params("id"), req.Word, req.Definition)
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (s *Server) HandlePinEntry(c *fiber.Ctx) error {
	e, err := s.org.TogglePinEntry(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(e)
}

func (s *Server) HandleDeleteEntry(c *fiber.Ctx) error {
	if err := s.org.DeleteEntry(c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) HandleStreak(c *fiber.Ctx) error {
	return c.JSON(s.org.Streak())
}

func (s *Server) HandleSetRestDays(c *fiber.Ctx) error {
	var req struct {
		Days []int `json:"days"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	st, err := s.org.SetRestDays(req.Days)
	if err != nil {
		return err
	}
	return c.JSON(st)
}

func (s *Server) HandleToggleRestDay(c *fiber.Ctx) error {
	day, err := c.ParamsInt("day")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "day must be 0-6")
	}
	st, err := s.org.ToggleRestDay(day)
	if err != nil {
		return err
	}
	return c.JSON(st)
}

func (s *Server) HandleResetStreak(c *fiber.Ctx) error {
	return c.JSON(s.org.ResetStreakViolation())
}
