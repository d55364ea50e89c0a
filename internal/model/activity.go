package model

import "time"

// Per-user collection bounds.
const (
	RecentLimit             = 5
	UsageListLimit          = 50
	SuggestionLimit         = 20
	TabMaxLength            = 80
	NameMaxLength           = 120
	IconMaxLength           = 255
	ToolIdeaMaxLength       = 255
	SuggestionNoteMaxLength = 1000
)

// RecentActivity is one entry of a user's "recently used" list. There is at
// most one entry per (user, tab); using a tool again moves it to the top.
type RecentActivity struct {
	UserID    string    `json:"-"          db:"user_id"`
	Tab       string    `json:"tab"        db:"tab"`
	Name      string    `json:"name"       db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ToolUsage counts how often a user opened a tool.
type ToolUsage struct {
	UserID    string    `json:"-"     db:"user_id"`
	Tab       string    `json:"tab"   db:"tab"`
	Count     int64     `json:"count" db:"count"`
	UpdatedAt time.Time `json:"-"     db:"updated_at"`
}

// Favourite marks a tool as favourited. Presence of the row is the state.
type Favourite struct {
	UserID    string    `json:"-"          db:"user_id"`
	Tab       string    `json:"tab"        db:"tab"`
	Name      string    `json:"name"       db:"name"`
	Icon      *string   `json:"icon"       db:"icon"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Suggestion is a tool idea from the user's suggestion box.
type Suggestion struct {
	ID        string    `json:"id"         db:"id"`
	UserID    string    `json:"-"          db:"user_id"`
	ToolIdea  string    `json:"tool_idea"  db:"tool_idea"`
	Note      *string   `json:"note"       db:"note"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
