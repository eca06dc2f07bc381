package models

import "time"

const (
	NovelStatusOngoing   = "ongoing"
	NovelStatusCompleted = "completed"
)

type Novel struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"author_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ImageURL      string    `json:"image_url"`
	ImagePublicID string    `json:"image_public_id"`
	Status        string    `json:"status"`
	Followers     int       `json:"followers"`
	ChapterCount  int       `json:"number_of_chapters"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
