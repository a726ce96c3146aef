package core

import "time"

// Stat is one dashboard figure with its bilingual caption.
type Stat struct {
	ID    string `json:"id"`
	Value string `json:"value"`
	Label Label  `json:"label"`
}

// LevelSnapshot records the level a user held after a recalculation.
type LevelSnapshot struct {
	ID         int64
	UserID     string
	Role       Role
	XP         float64
	Level      int
	TierName   Label
	Progress   int
	RecordedAt time.Time
}
