// http/handlers.go
package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ViniZap4/stride-server/markup"
	"github.com/ViniZap4/stride-server/tree"
)

type folderRequest struct {
	Path   []string `json:"path"`
	Parent []string `json:"parent"`
	Dest   []string `json:"dest"`
	Name   string   `json:"name"`
}

func (s *Server) HandleTree(c *fiber.Ctx) error {
	return c.JSON(s.org.Tree())
}

func (s *Server) HandleFolders(c *fiber.Ctx) error {
	return c.JSON(s.org.Folders())
}

func (s *Server) HandleChildren(c *fiber.Ctx) error {
	children, err := s.org.Children(queryPath(c))
	if err != nil {
		return err
	}
	return c.JSON(children)
}

func (s *Server) HandleCreateFolder(c *fiber.Ctx) error {
	var req folderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	folder, err := s.org.CreateFolder(req.Parent, req.Name)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(folder)
}

func (s *Server) HandleRenameFolder(c *fiber.Ctx) error {
	var req folderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.org.RenameFolder(req.Path, req.Name); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) HandleMoveFolder(c *fiber.Ctx) error {
	var req folderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.org.MoveFolder(req.Path, req.Dest); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) HandleDuplicateFolder(c *fiber.Ctx) error {
	var req folderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	folder, err := s.org.DuplicateFolder(req.Path)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(folder)
}

func (s *Server) HandlePinFolder(c *fiber.Ctx) error {
	var req folderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	pinned, err := s.org.TogglePin(req.Path)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"pinned": pinned})
}

// HandleDeleteFolder takes the folder path from the query string since some
// clients drop DELETE bodies.
func (s *Server) HandleDeleteFolder(c *fiber.Ctx) error {
	item, err := s.org.DeleteFolder(queryPath(c))
	if err != nil {
		return err
	}
	return c.JSON(item)
}

func (s *Server) HandleCreateNote(c *fiber.Ctx) error {
	var req struct {
		Folder  []string `json:"folder"`
		Title   string   `json:"title"`
		Content string   `json:"content"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	note, err := s.org.CreateNote(req.Folder, req.Title, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (s *Server) HandleRecentNotes(c *fiber.Ctx) error {
	return c.JSON(s.org.RecentNotes(c.QueryInt("limit", 0)))
}

func (s *Server) HandleGetNote(c *fiber.Ctx) error {
	loc, err := s.org.Note(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(loc)
}

func (s *Server) HandleUpdateNote(c *fiber.Ctx) error {
	var changes tree.NoteChanges
	if err := bind(c, &changes); err != nil {
		return err
	}
	note, err := s.org.UpdateNote(c.Params("id"), changes)
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (s *Server) HandleOpenNote(c *fiber.Ctx) error {
	loc, err := s.org.OpenNote(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(loc)
}

func (s *Server) HandleMoveNote(c *fiber.Ctx) error {
	var req folderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := s.org.MoveNote(c.Params("id"), req.Dest); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) HandleDuplicateNote(c *fiber.Ctx) error {
	note, err := s.org.DuplicateNote(c.Params("id"))
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

func (s *Server) HandleFormatNote(c *fiber.Ctx) error {
	var req struct {
		Start     int    `json:"start"`
		End       int    `json:"end"`
		Kind      string `json:"kind"`
		Color     string `json:"color"`
		NoteID    string `json:"noteId"`
		NoteTitle string `json:"noteTitle"`
		EntryID   string `json:"entryId"`
	}
	if err := bind(c, &req); err != nil {
		return err
	}
	kind, ok := markup.ParseKind(req.Kind)
	if !ok || kind == markup.Plain {
		return fiber.NewError(fiber.StatusBadRequest, "unknown format kind "+strconv.Quote(req.Kind))
	}
	note, err := s.org.FormatNote(c.Params("id"), req.Start, req.End, markup.Format{
		Kind:      kind,
		Color:     req.Color,
		NoteID:    req.NoteID,
		NoteTitle: req.NoteTitle,
		EntryID:   req.EntryID,
	})
	if err != nil {
		return err
	}
	return c.JSON(note)
}

func (s *Server) HandleRenderNote(c *fiber.Ctx) error {
	html, err := s.org.RenderNote(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"html": html})
}

func (s *Server) HandleDeleteNote(c *fiber.Ctx) error {
	item, err := s.org.DeleteNote(c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(item)
}
