package message

import (
	"time"

	"github.com/simp-lee/dating/internal/domain"
)

// SendMessageRequest represents a new message from the path user.
type SendMessageRequest struct {
	RecipientID uint   `json:"recipient_id" binding:"required"`
	Content     string `json:"content" binding:"required,max=4000"`
}

// ListMessagesQuery holds the container filter of GET /users/:id/messages.
type ListMessagesQuery struct {
	MessageContainer string `form:"messageContainer"`
}

// MessageResponse is the public view of a message.
type MessageResponse struct {
	ID                uint       `json:"id"`
	SenderID          uint       `json:"sender_id"`
	SenderKnownAs     string     `json:"sender_known_as"`
	SenderPhotoURL    string     `json:"sender_photo_url"`
	RecipientID       uint       `json:"recipient_id"`
	RecipientKnownAs  string     `json:"recipient_known_as"`
	RecipientPhotoURL string     `json:"recipient_photo_url"`
	Content           string     `json:"content"`
	IsRead            bool       `json:"is_read"`
	DateRead          *time.Time `json:"date_read"`
	MessageSent       time.Time  `json:"message_sent"`
}

func toMessageResponse(m domain.Message) MessageResponse {
	resp := MessageResponse{
		ID:          m.ID,
		SenderID:    m.SenderID,
		RecipientID: m.RecipientID,
		Content:     m.Content,
		IsRead:      m.IsRead,
		DateRead:    m.DateRead,
		MessageSent: m.MessageSent,
	}
	resp.SenderKnownAs, resp.SenderPhotoURL = party(m.Sender)
	resp.RecipientKnownAs, resp.RecipientPhotoURL = party(m.Recipient)
	return resp
}

// party returns the display name and main photo url of u.
func party(u *domain.User) (knownAs, photoURL string) {
	if u == nil {
		return "", ""
	}
	if p := u.MainPhoto(); p != nil {
		photoURL = p.URL
	}
	return u.KnownAs, photoURL
}

func toMessageResponses(msgs []domain.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}
