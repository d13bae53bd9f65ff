// domain/items.go
package domain

import (
	"encoding/json"
	"time"
)

type ItemType string

const (
	ItemNote   ItemType = "note"
	ItemFolder ItemType = "folder"
)

type TrashItem struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Type         ItemType  `json:"type"`
	OriginalPath []string  `json:"originalPath"`
	DeletedAt    time.Time `json:"deletedAt"`
	FolderID     string    `json:"folderId,omitempty"`
	Subfolders   []*Folder `json:"subfolders,omitempty"`
	Notes        []*Note   `json:"notes,omitempty"`
}

type Bookmark struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"createdAt"`
}

type TodoItem struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Task      string    `json:"task"`
	Date      time.Time `json:"date"`
	Time      string    `json:"time"`
	Color     string    `json:"color"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

type DictionaryEntry struct {
	ID            string `json:"id"`
	Word          string `json:"word"`
	Definition    string `json:"definition"`
	IsPinned      bool   `json:"isPinned"`
	OriginalOrder int    `json:"originalOrder"`
}

// StreakState is persisted as a single record. LastActiveDate uses the
// "2006-01-02" layout in the tracker's location.
type StreakState struct {
	SelectedRestDays []int   `json:"selectedRestDays"`
	CurrentStreak    int     `json:"currentStreak"`
	LastActiveDate   *string `json:"lastActiveDate"`
	IsStreakViolated bool    `json:"isStreakViolated"`
}

func NewStreakState() StreakState {
	return StreakState{SelectedRestDays: []int{}, CurrentStreak: 1}
}

// UnmarshalJSON fills the defaults a missing or zero field implies.
func (s *StreakState) UnmarshalJSON(data []byte) error {
	type plain StreakState
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.SelectedRestDays == nil {
		p.SelectedRestDays = []int{}
	}
	if p.CurrentStreak < 1 {
		p.CurrentStreak = 1
	}
	*s = StreakState(p)
	return nil
}

// Workspace pairs the folder tree with the trash ledger so that moving an
// item to the trash, or restoring it, is one state transition.
type Workspace struct {
	Folders []*Folder
	Trash   []TrashItem
}
