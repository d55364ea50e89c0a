package model

import "time"

// MinutesMode tells which generator produced a record.
type MinutesMode string

const (
	MinutesModeAI      MinutesMode = "AI"
	MinutesModeClassic MinutesMode = "Classic"
)

// MinutesRecord is a generated Minutes of Meeting, kept for history.
// Artifact is the public path of the text file written for classic minutes.
type MinutesRecord struct {
	ID         string      `json:"id"                 db:"id"`
	Mode       MinutesMode `json:"mode"               db:"mode"`
	Transcript string      `json:"transcript"         db:"transcript"`
	Minutes    string      `json:"mom"                db:"mom"`
	Artifact   string      `json:"artifact,omitempty" db:"artifact"`
	CreatedAt  time.Time   `json:"created_at"         db:"created_at"`
}
