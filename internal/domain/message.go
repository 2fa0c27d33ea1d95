package domain

import (
	"context"
	"time"
)

// Message is a direct message between two members.
type Message struct {
	BaseModel
	SenderID    uint       `gorm:"index;not null" json:"sender_id"`
	Sender      *User      `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	RecipientID uint       `gorm:"index;not null" json:"recipient_id"`
	Recipient   *User      `gorm:"foreignKey:RecipientID" json:"recipient,omitempty"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	IsRead      bool       `gorm:"not null;default:false" json:"is_read"`
	DateRead    *time.Time `json:"date_read,omitempty"`
	MessageSent time.Time  `gorm:"index;not null" json:"message_sent"`
}

// Involves reports whether userID is the sender or the recipient.
func (m *Message) Involves(userID uint) bool {
	return m.SenderID == userID || m.RecipientID == userID
}

// MessageRepository defines the data access interface for messages.
// Listings eagerly load Sender and Recipient together with their photos.
type MessageRepository interface {
	Create(ctx context.Context, msg *Message) error
	Update(ctx context.Context, msg *Message) error
	Delete(ctx context.Context, msg *Message) error
	GetMessage(ctx context.Context, id uint) (*Message, error)
	GetMessagesForUser(ctx context.Context, params MessageParams) (*Page[Message], error)
	GetMessageThread(ctx context.Context, userID, recipientID uint) ([]Message, error)
}

// MessageService defines the business logic interface for messages.
type MessageService interface {
	ListMessages(ctx context.Context, params MessageParams) (*Page[Message], error)
	GetThread(ctx context.Context, userID, recipientID uint) ([]Message, error)
	GetMessage(ctx context.Context, userID, id uint) (*Message, error)
	SendMessage(ctx context.Context, senderID, recipientID uint, content string) (*Message, error)
	MarkRead(ctx context.Context, userID, id uint) error
	DeleteMessage(ctx context.Context, userID, id uint) error
}
