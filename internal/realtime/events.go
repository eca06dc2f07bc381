package realtime

import "time"

// ChapterEvent is pushed to connected readers when a novel gains a chapter.
type ChapterEvent struct {
	Type          string    `json:"type"` // "chapter.created"
	NovelID       string    `json:"novel_id"`
	ChapterID     string    `json:"chapter_id"`
	ChapterNumber int       `json:"chapter_number"`
	Title         string    `json:"title"`
	At            time.Time `json:"at"`
}
