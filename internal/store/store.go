package store

import (
	"errors"

	"github.com/urbanluxe/urbanluxe/internal/models"
)

var (
	// ErrNotFound is returned when a user, conversation or message does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique constraint (username, email) is violated.
	ErrDuplicate = errors.New("already exists")
	// ErrNotParticipant is returned when a user acts on a conversation they are not part of.
	ErrNotParticipant = errors.New("not a participant")
	// ErrEmptyMessage is returned for empty or whitespace-only message text.
	ErrEmptyMessage = errors.New("empty message text")
	// ErrSelfConversation is returned when a user tries to open a conversation with themselves.
	ErrSelfConversation = errors.New("conversation with self")
)

type Store interface {
	// User operations
	CreateUser(user *models.User) error
	GetUserByUsername(username string) (*models.User, error)
	GetUserByID(id int) (*models.User, error)

	// Conversation operations. At most one conversation exists per unordered
	// pair of users; GetOrCreateConversation converges on it even when both
	// participants race to create it. Viewer-relative fields (Receiver, Seen)
	// are filled in for viewerID.
	GetOrCreateConversation(viewerID, otherID int) (*models.Conversation, error)
	GetConversation(conversationID, viewerID int) (*models.Conversation, error)
	ListConversationsForUser(viewerID int) ([]models.Conversation, error)
	AppendMessage(conversationID, authorID int, text string) (*models.Message, error)
	MarkSeen(conversationID, userID int) error
	Counterpart(conversationID, userID int) (int, error)
	UnreadCount(userID int) (int, error)
}
