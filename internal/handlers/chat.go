package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/urbanluxe/urbanluxe/internal/middleware"
	"github.com/urbanluxe/urbanluxe/internal/store"
	"github.com/urbanluxe/urbanluxe/internal/ws"
)

type ChatHandler struct {
	Store store.Store
	Hub   *ws.Hub
}

type CreateChatRequest struct {
	ReceiverID int `json:"receiverId" validate:"required,gt=0"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required"`
}

// GetChats lists the caller's conversations, newest first, each flagged with
// whether the caller has seen its latest state.
func (h *ChatHandler) GetChats(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	chats, err := h.Store.ListConversationsForUser(userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	json.NewEncoder(w).Encode(chats)
}

// CreateChat resolves the single conversation between the caller and the
// requested counterpart, creating it on first contact.
func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	chat, err := h.Store.GetOrCreateConversation(userID, req.ReceiverID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(chat)
}

// GetChat returns a conversation with its messages and marks it seen for the
// caller, since opening a chat is how the client reads it.
func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	chatID, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid chat id", http.StatusBadRequest)
		return
	}

	if err := h.Store.MarkSeen(chatID, userID); err != nil {
		writeStoreError(w, err)
		return
	}
	chat, err := h.Store.GetConversation(chatID, userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	json.NewEncoder(w).Encode(chat)
}

// ReadChat marks the conversation seen for the caller. Idempotent.
func (h *ChatHandler) ReadChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	chatID, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid chat id", http.StatusBadRequest)
		return
	}

	if err := h.Store.MarkSeen(chatID, userID); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// SendMessage appends a message to the conversation, then asks the relay to
// push it to the counterpart's live connection. Persistence always comes
// first; a missed delivery only costs the real-time notification.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	chatID, err := pathID(r)
	if err != nil {
		http.Error(w, "Invalid chat id", http.StatusBadRequest)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := validate.Struct(req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	msg, err := h.Store.AppendMessage(chatID, userID, req.Text)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if receiverID, err := h.Store.Counterpart(chatID, userID); err == nil {
		h.Hub.Deliver(receiverID, ws.DeliveryEvent{
			ConversationID: msg.ConversationID,
			AuthorID:       msg.AuthorID,
			Text:           msg.Text,
			CreatedAt:      msg.CreatedAt,
		})
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

// Notification returns the caller's number of unread conversations.
func (h *ChatHandler) Notification(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	count, err := h.Store.UnreadCount(userID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	json.NewEncoder(w).Encode(count)
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || id <= 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, store.ErrNotParticipant):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, store.ErrEmptyMessage), errors.Is(err, store.ErrSelfConversation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
