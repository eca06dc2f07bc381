package models

import "time"

type Chapter struct {
	ID            string    `json:"id"`
	NovelID       string    `json:"novel_id"`
	AuthorID      string    `json:"author_id"`
	Title         string    `json:"title"`
	Content       string    `json:"content,omitempty"`
	ChapterNumber int       `json:"chapter_number"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
