package models

import "time"

// Kind - вид контента: топик или статья
type Kind string

const (
	KindTopic   Kind = "topic"
	KindArticle Kind = "article"
)

// AuthorSnapshot - денормализованный снимок автора для отображения
type AuthorSnapshot struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type ContentItem struct {
	ID         string         `json:"id"`
	Kind       Kind           `json:"kind"`
	Title      string         `json:"title"`
	Body       string         `json:"body"`
	AuthorID   string         `json:"authorId"`
	Author     AuthorSnapshot `json:"author"`
	Category   string         `json:"category"`
	Tags       []string       `json:"tags"`
	VoteCount  int            `json:"voteCount"`
	ReplyCount int            `json:"replyCount"`
	ViewCount  int            `json:"viewCount"`
	ReadTime   string         `json:"readTime,omitempty"` // только для статей
	CreatedAt  time.Time      `json:"createdAt"`
	Trending   bool           `json:"trending"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Avatar       string    `json:"avatar"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Draft - единственный слот черновика на вид контента,
// перезаписывается при каждом сохранении
type Draft struct {
	Title    string    `json:"title"`
	Body     string    `json:"body"`
	Category string    `json:"category"`
	Tags     string    `json:"tags"`
	SavedAt  time.Time `json:"savedAt"`
}
