package models

import "time"

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserSummary is the counterpart info embedded in a conversation.
type UserSummary struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Conversation is the unique two-party thread between a pair of users,
// rendered from the point of view of one of them: Receiver is the other
// participant, Seen reports whether the viewer has seen the latest state.
type Conversation struct {
	ID          int         `json:"id"`
	Receiver    UserSummary `json:"receiver"`
	Seen        bool        `json:"seen"`
	LastMessage string      `json:"lastMessage,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	Messages    []Message   `json:"messages,omitempty"`
}

type Message struct {
	ID             int       `json:"id"`
	ConversationID int       `json:"conversationId"`
	AuthorID       int       `json:"authorId"`
	Text           string    `json:"text"`
	CreatedAt      time.Time `json:"createdAt"`
}
