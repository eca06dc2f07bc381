package models

import "time"

// Follow is the user/novel edge behind the derived followers counter.
// Existence is binary; the timestamp is audit-only.
type Follow struct {
	UserID    string    `json:"user_id"`
	NovelID   string    `json:"novel_id"`
	CreatedAt time.Time `json:"created_at"`
}
