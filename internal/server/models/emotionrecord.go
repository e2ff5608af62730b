package models

import (
	"database/sql"
	"time"
)

// EmotionRecord is one persisted emotion submission and the music
// parameters computed for it. MusicParams is kept as opaque serialized
// JSON so the parameter shape can evolve without schema migrations.
// Records are immutable after creation; the only lifecycle transition is
// deletion by their owner.
type EmotionRecord struct {
	ID          int64
	UserID      int64
	Emotion     string
	Color       string
	Intensity   int
	MusicParams string
	Notes       sql.NullString
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
