package query

import (
	"slices"
	"time"

	"github.com/simp-lee/dating/internal/domain"
)

// NewestMessageFirst orders messages by send time, most recent first.
var NewestMessageFirst = Descending(
	func(m domain.Message) time.Time { return m.MessageSent },
	func(m domain.Message) uint { return m.ID },
)

// MessageFilter returns the predicate for the requested container.
// Unrecognised containers read as Unread.
func MessageFilter(p domain.MessageParams) Predicate[domain.Message] {
	userID := p.UserID
	switch domain.ParseMessageContainer(string(p.MessageContainer)) {
	case domain.ContainerInbox:
		return func(m domain.Message) bool { return m.RecipientID == userID }
	case domain.ContainerOutbox:
		return func(m domain.Message) bool { return m.SenderID == userID }
	default:
		return func(m domain.Message) bool { return m.RecipientID == userID && !m.IsRead }
	}
}

// MessagePlan assembles the full query for a message listing.
func MessagePlan(p domain.MessageParams) Plan[domain.Message] {
	return Plan[domain.Message]{
		Filters:    []Predicate[domain.Message]{MessageFilter(p)},
		Compare:    NewestMessageFirst,
		PageNumber: p.PageNumber,
		PageSize:   p.PageSize,
	}
}

// ThreadFilter matches messages exchanged between userID and recipientID in either direction.
func ThreadFilter(userID, recipientID uint) Predicate[domain.Message] {
	return func(m domain.Message) bool {
		return (m.RecipientID == userID && m.SenderID == recipientID) ||
			(m.RecipientID == recipientID && m.SenderID == userID)
	}
}

// Thread returns the whole conversation between userID and recipientID,
// newest first. It is not paginated.
func Thread(records []domain.Message, userID, recipientID uint) []domain.Message {
	out := Filter(records, ThreadFilter(userID, recipientID))
	slices.SortStableFunc(out, NewestMessageFirst)
	return out
}
