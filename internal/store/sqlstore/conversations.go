package sqlstore

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/urbanluxe/urbanluxe/internal/models"
	"github.com/urbanluxe/urbanluxe/internal/store"
)

// pairKey normalizes an unordered participant pair for the
// UNIQUE (user_lo, user_hi) constraint.
func pairKey(a, b int) (lo, hi int) {
	if a < b {
		return a, b
	}
	return b, a
}

func (s *SQLStore) GetOrCreateConversation(viewerID, otherID int) (*models.Conversation, error) {
	if viewerID == otherID {
		return nil, store.ErrSelfConversation
	}
	if _, err := s.GetUserByID(otherID); err != nil {
		return nil, err
	}

	lo, hi := pairKey(viewerID, otherID)
	id, err := s.findConversationByPair(lo, hi)
	if errors.Is(err, sql.ErrNoRows) {
		id, err = s.createConversation(lo, hi, viewerID)
		if err != nil {
			// Likely lost a creation race with the other participant; the
			// unique constraint rejected our row, so the pair must exist now.
			if existingID, findErr := s.findConversationByPair(lo, hi); findErr == nil {
				id = existingID
			} else {
				return nil, err
			}
		}
	} else if err != nil {
		return nil, err
	}

	return s.GetConversation(id, viewerID)
}

func (s *SQLStore) findConversationByPair(lo, hi int) (int, error) {
	var id int
	query := s.rebind("SELECT id FROM conversations WHERE user_lo = ? AND user_hi = ?")
	err := s.db.QueryRow(query, lo, hi).Scan(&id)
	return id, err
}

func (s *SQLStore) createConversation(lo, hi, creatorID int) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int
	query := s.rebind("INSERT INTO conversations (user_lo, user_hi) VALUES (?, ?) RETURNING id")
	if err := tx.QueryRow(query, lo, hi).Scan(&id); err != nil {
		return 0, err
	}
	// The creator has seen the (empty) conversation; the counterpart has not.
	query = s.rebind("INSERT INTO conversation_seen (conversation_id, user_id) VALUES (?, ?)")
	if _, err := tx.Exec(query, id, creatorID); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

func (s *SQLStore) GetConversation(conversationID, viewerID int) (*models.Conversation, error) {
	lo, hi, err := s.participants(conversationID)
	if err != nil {
		return nil, err
	}
	if viewerID != lo && viewerID != hi {
		return nil, store.ErrNotParticipant
	}
	receiverID := lo
	if viewerID == lo {
		receiverID = hi
	}

	var conv models.Conversation
	query := s.rebind(`
		SELECT c.id, c.last_message, c.created_at,
		       u.id, u.username, COALESCE(u.avatar, ''),
		       EXISTS(SELECT 1 FROM conversation_seen s WHERE s.conversation_id = c.id AND s.user_id = ?)
		FROM conversations c
		JOIN users u ON u.id = ?
		WHERE c.id = ?
	`)
	err = s.db.QueryRow(query, viewerID, receiverID, conversationID).Scan(
		&conv.ID, &conv.LastMessage, &conv.CreatedAt,
		&conv.Receiver.ID, &conv.Receiver.Username, &conv.Receiver.Avatar,
		&conv.Seen,
	)
	if err != nil {
		return nil, err
	}

	conv.Messages, err = s.conversationMessages(conversationID)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (s *SQLStore) conversationMessages(conversationID int) ([]models.Message, error) {
	// Creation-time order, insertion order (ascending id) breaking ties.
	query := s.rebind(`
		SELECT id, conversation_id, author_id, text, created_at
		FROM messages
		WHERE conversation_id = ?
		ORDER BY created_at ASC, id ASC
	`)
	rows, err := s.db.Query(query, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.AuthorID, &m.Text, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SQLStore) ListConversationsForUser(viewerID int) ([]models.Conversation, error) {
	query := s.rebind(`
		SELECT c.id, c.last_message, c.created_at,
		       u.id, u.username, COALESCE(u.avatar, ''),
		       EXISTS(SELECT 1 FROM conversation_seen s WHERE s.conversation_id = c.id AND s.user_id = ?)
		FROM conversations c
		JOIN users u ON u.id = CASE WHEN c.user_lo = ? THEN c.user_hi ELSE c.user_lo END
		WHERE c.user_lo = ? OR c.user_hi = ?
		ORDER BY c.created_at DESC, c.id DESC
	`)
	rows, err := s.db.Query(query, viewerID, viewerID, viewerID, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		err := rows.Scan(
			&conv.ID, &conv.LastMessage, &conv.CreatedAt,
			&conv.Receiver.ID, &conv.Receiver.Username, &conv.Receiver.Avatar,
			&conv.Seen,
		)
		if err != nil {
			return nil, err
		}
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

func (s *SQLStore) AppendMessage(conversationID, authorID int, text string) (*models.Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, store.ErrEmptyMessage
	}
	counterpartID, err := s.Counterpart(conversationID, authorID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	msg := &models.Message{
		ConversationID: conversationID,
		AuthorID:       authorID,
		Text:           text,
		CreatedAt:      time.Now().UTC(),
	}
	query := s.rebind("INSERT INTO messages (conversation_id, author_id, text, created_at) VALUES (?, ?, ?, ?) RETURNING id")
	if err := tx.QueryRow(query, conversationID, authorID, text, msg.CreatedAt).Scan(&msg.ID); err != nil {
		return nil, err
	}

	// The new message is unread for the counterpart and seen by its author.
	query = s.rebind("DELETE FROM conversation_seen WHERE conversation_id = ? AND user_id = ?")
	if _, err := tx.Exec(query, conversationID, counterpartID); err != nil {
		return nil, err
	}
	query = s.rebind("INSERT INTO conversation_seen (conversation_id, user_id) VALUES (?, ?) ON CONFLICT (conversation_id, user_id) DO NOTHING")
	if _, err := tx.Exec(query, conversationID, authorID); err != nil {
		return nil, err
	}

	query = s.rebind("UPDATE conversations SET last_message = ? WHERE id = ?")
	if _, err := tx.Exec(query, text, conversationID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *SQLStore) MarkSeen(conversationID, userID int) error {
	if _, err := s.Counterpart(conversationID, userID); err != nil {
		return err
	}
	query := s.rebind("INSERT INTO conversation_seen (conversation_id, user_id) VALUES (?, ?) ON CONFLICT (conversation_id, user_id) DO NOTHING")
	_, err := s.db.Exec(query, conversationID, userID)
	return err
}

// Counterpart returns the other participant of a conversation, validating
// that userID is a participant in the first place.
func (s *SQLStore) Counterpart(conversationID, userID int) (int, error) {
	lo, hi, err := s.participants(conversationID)
	if err != nil {
		return 0, err
	}
	switch userID {
	case lo:
		return hi, nil
	case hi:
		return lo, nil
	default:
		return 0, store.ErrNotParticipant
	}
}

func (s *SQLStore) UnreadCount(userID int) (int, error) {
	var count int
	query := s.rebind(`
		SELECT COUNT(*)
		FROM conversations c
		WHERE (c.user_lo = ? OR c.user_hi = ?)
		  AND NOT EXISTS(SELECT 1 FROM conversation_seen s WHERE s.conversation_id = c.id AND s.user_id = ?)
	`)
	err := s.db.QueryRow(query, userID, userID, userID).Scan(&count)
	return count, err
}

func (s *SQLStore) participants(conversationID int) (lo, hi int, err error) {
	query := s.rebind("SELECT user_lo, user_hi FROM conversations WHERE id = ?")
	err = s.db.QueryRow(query, conversationID).Scan(&lo, &hi)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, store.ErrNotFound
	}
	return lo, hi, err
}
