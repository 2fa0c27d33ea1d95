package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/simp-lee/dating/internal/domain"
	"github.com/simp-lee/dating/internal/query"
)

// messageRepository implements domain.MessageRepository over a Dataset.
type messageRepository struct {
	d *Dataset
}

// NewMessageRepository returns a domain.MessageRepository reading and writing d.
func NewMessageRepository(d *Dataset) domain.MessageRepository {
	return &messageRepository{d: d}
}

// Create stores a new message. MessageSent defaults to the dataset clock.
func (r *messageRepository) Create(_ context.Context, msg *domain.Message) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	msg.ID = r.d.nextMessageID
	r.d.nextMessageID++
	r.d.stamp(&msg.BaseModel)
	if msg.MessageSent.IsZero() {
		msg.MessageSent = msg.CreatedAt
	}

	stored := *msg
	stored.Sender, stored.Recipient = nil, nil
	r.d.messages[msg.ID] = stored
	return nil
}

// Update saves an existing message.
func (r *messageRepository) Update(_ context.Context, msg *domain.Message) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.messages[msg.ID]; !ok {
		return domain.NewAppError(domain.CodeNotFound, "message not found", nil)
	}
	msg.UpdatedAt = r.d.now()
	stored := *msg
	stored.Sender, stored.Recipient = nil, nil
	r.d.messages[msg.ID] = stored
	return nil
}

// Delete removes msg.
func (r *messageRepository) Delete(_ context.Context, msg *domain.Message) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.messages[msg.ID]; !ok {
		return domain.NewAppError(domain.CodeNotFound, "message not found", nil)
	}
	delete(r.d.messages, msg.ID)
	return nil
}

// GetMessage returns one message with both parties attached.
func (r *messageRepository) GetMessage(_ context.Context, id uint) (*domain.Message, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	m, ok := r.d.messages[id]
	if !ok {
		return nil, domain.NewAppError(domain.CodeNotFound, "message not found", nil)
	}
	m = r.d.withParties(m)
	return &m, nil
}

// GetMessagesForUser runs a container listing through the query engine.
func (r *messageRepository) GetMessagesForUser(_ context.Context, params domain.MessageParams) (*domain.Page[domain.Message], error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	page, err := query.Run(r.snapshot(), query.MessagePlan(params))
	if err != nil {
		return nil, err
	}
	for i := range page.Items {
		page.Items[i] = r.d.withParties(page.Items[i])
	}
	return page, nil
}

// GetMessageThread returns every message between userID and recipientID, newest first.
func (r *messageRepository) GetMessageThread(_ context.Context, userID, recipientID uint) ([]domain.Message, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	thread := query.Thread(r.snapshot(), userID, recipientID)
	for i := range thread {
		thread[i] = r.d.withParties(thread[i])
	}
	return thread, nil
}

// snapshot copies the stored messages in id order. Caller holds a lock.
func (r *messageRepository) snapshot() []domain.Message {
	out := make([]domain.Message, 0, len(r.d.messages))
	for _, m := range r.d.messages {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b domain.Message) int { return cmp.Compare(a.ID, b.ID) })
	return out
}
