package message

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/simp-lee/dating/internal/domain"
)

// messageService implements domain.MessageService.
type messageService struct {
	messages domain.MessageRepository
	users    domain.UserRepository
	now      func() time.Time
}

// NewMessageService creates a new MessageService. users resolves message parties.
func NewMessageService(messages domain.MessageRepository, users domain.UserRepository) domain.MessageService {
	return &messageService{messages: messages, users: users, now: time.Now}
}

// ListMessages returns one page of the requested container.
func (s *messageService) ListMessages(ctx context.Context, params domain.MessageParams) (*domain.Page[domain.Message], error) {
	params.MessageContainer = domain.ParseMessageContainer(string(params.MessageContainer))
	return s.messages.GetMessagesForUser(ctx, params)
}

// GetThread returns the conversation between userID and recipientID, newest first.
func (s *messageService) GetThread(ctx context.Context, userID, recipientID uint) ([]domain.Message, error) {
	return s.messages.GetMessageThread(ctx, userID, recipientID)
}

// GetMessage returns a message userID sent or received.
func (s *messageService) GetMessage(ctx context.Context, userID, id uint) (*domain.Message, error) {
	msg, err := s.messages.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	if !msg.Involves(userID) {
		return nil, domain.NewAppError(domain.CodeNotFound, "message not found", nil)
	}
	return msg, nil
}

// SendMessage stores a message from senderID to recipientID.
func (s *messageService) SendMessage(ctx context.Context, senderID, recipientID uint, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "content is required", nil)
	}
	if senderID == recipientID {
		return nil, domain.NewAppError(domain.CodeValidation, "you cannot send messages to yourself", nil)
	}

	if _, err := s.users.GetUser(ctx, senderID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetUser(ctx, recipientID); err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewAppError(domain.CodeNotFound, "recipient not found", err)
		}
		return nil, err
	}

	msg := &domain.Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
		MessageSent: s.now(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "message sent",
		slog.Uint64("message_id", uint64(msg.ID)),
		slog.Uint64("sender_id", uint64(senderID)),
		slog.Uint64("recipient_id", uint64(recipientID)),
	)
	return s.messages.GetMessage(ctx, msg.ID)
}

// MarkRead flags a message as read. Only its recipient may do so; marking
// an already read message again keeps the first read time.
func (s *messageService) MarkRead(ctx context.Context, userID, id uint) error {
	msg, err := s.GetMessage(ctx, userID, id)
	if err != nil {
		return err
	}
	if msg.RecipientID != userID {
		return domain.NewAppError(domain.CodeForbidden, "only the recipient can mark a message as read", nil)
	}
	if msg.IsRead {
		return nil
	}

	readAt := s.now()
	msg.IsRead = true
	msg.DateRead = &readAt
	return s.messages.Update(ctx, msg)
}

// DeleteMessage removes a message userID sent or received.
func (s *messageService) DeleteMessage(ctx context.Context, userID, id uint) error {
	msg, err := s.GetMessage(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, msg); err != nil {
		return err
	}
	slog.InfoContext(ctx, "message deleted",
		slog.Uint64("message_id", uint64(id)),
		slog.Uint64("user_id", uint64(userID)),
	)
	return nil
}
