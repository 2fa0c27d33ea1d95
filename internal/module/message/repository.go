package message

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/dating/internal/domain"
	"github.com/simp-lee/dating/internal/pkg"
	"github.com/simp-lee/dating/internal/query"
)

// messageRepository implements domain.MessageRepository using GORM.
type messageRepository struct {
	db    *gorm.DB
	store domain.Store[domain.Message]
	now   func() time.Time
}

// NewMessageRepository creates a new MessageRepository backed by the given GORM database.
func NewMessageRepository(db *gorm.DB) domain.MessageRepository {
	return &messageRepository{
		db:    db,
		store: pkg.NewStore[domain.Message](db),
		now:   time.Now,
	}
}

// Create inserts msg. MessageSent defaults to the current time.
func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if msg.MessageSent.IsZero() {
		msg.MessageSent = r.now()
	}
	return r.store.Add(ctx, msg)
}

// Update saves an existing message without touching its parties.
func (r *messageRepository) Update(ctx context.Context, msg *domain.Message) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(msg).Error; err != nil {
		return pkg.MapDBError(err, "")
	}
	return nil
}

// Delete removes msg.
func (r *messageRepository) Delete(ctx context.Context, msg *domain.Message) error {
	if err := r.store.Delete(ctx, msg); err != nil {
		if domain.IsNotFound(err) {
			return domain.NewAppError(domain.CodeNotFound, "message not found", err)
		}
		return err
	}
	return nil
}

// GetMessage retrieves a message by its primary key with both parties.
func (r *messageRepository) GetMessage(ctx context.Context, id uint) (*domain.Message, error) {
	var msg domain.Message
	if err := r.db.WithContext(ctx).Scopes(withParties).First(&msg, id).Error; err != nil {
		return nil, pkg.MapDBError(err, "message not found")
	}
	return &msg, nil
}

// GetMessagesForUser returns one page of the requested container, newest first.
func (r *messageRepository) GetMessagesForUser(ctx context.Context, params domain.MessageParams) (*domain.Page[domain.Message], error) {
	if err := query.ValidatePage(params.PageNumber, params.PageSize); err != nil {
		return nil, err
	}

	base := r.db.WithContext(ctx).Model(&domain.Message{}).
		Scopes(containerFilter(params)).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err, "")
	}

	msgs := []domain.Message{}
	if query.HasPage(params.PageNumber, params.PageSize, total) {
		if err := base.Scopes(
			pkg.OrderDesc("message_sent"),
			pkg.Paginate(params.PageNumber, params.PageSize),
			withParties,
		).Find(&msgs).Error; err != nil {
			return nil, pkg.MapDBError(err, "")
		}
	}

	return query.NewPage(msgs, total, params.PageNumber, params.PageSize), nil
}

// GetMessageThread returns every message between userID and recipientID, newest first.
func (r *messageRepository) GetMessageThread(ctx context.Context, userID, recipientID uint) ([]domain.Message, error) {
	msgs := []domain.Message{}
	err := r.db.WithContext(ctx).
		Where("(recipient_id = ? AND sender_id = ?) OR (recipient_id = ? AND sender_id = ?)",
			userID, recipientID, recipientID, userID).
		Scopes(pkg.OrderDesc("message_sent"), withParties).
		Find(&msgs).Error
	if err != nil {
		return nil, pkg.MapDBError(err, "")
	}
	return msgs, nil
}

// containerFilter selects the inbox, outbox or unread messages of the user.
func containerFilter(p domain.MessageParams) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch domain.ParseMessageContainer(string(p.MessageContainer)) {
		case domain.ContainerInbox:
			return db.Where("recipient_id = ?", p.UserID)
		case domain.ContainerOutbox:
			return db.Where("sender_id = ?", p.UserID)
		default:
			return db.Where("recipient_id = ? AND is_read = ?", p.UserID, false)
		}
	}
}

// withParties eagerly loads sender and recipient with their photos.
func withParties(db *gorm.DB) *gorm.DB {
	return db.Preload("Sender.Photos").Preload("Recipient.Photos")
}
