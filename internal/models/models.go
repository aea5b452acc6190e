package models

import "time"

// DefaultImageFile is the sentinel image reference assigned to every
// freshly registered user until they upload a picture of their own.
const DefaultImageFile = "default.jpg"

type User struct {
	ID        int64
	Username  string
	Email     string
	PassHash  []byte
	ImageFile string
}

type Post struct {
	ID         int64
	Title      string
	Content    string
	AuthorID   int64
	DatePosted time.Time
}

type Message struct {
	Email   string `json:"to"`
	Link    string `json:"link"`
	Subject string `json:"subject"`
}
