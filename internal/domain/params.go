package domain

import "strings"

// Defaults shared by the member and message listings.
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 10
	MaxPageSize       = 50

	DefaultMinAge = 18
	DefaultMaxAge = 99
)

// UserOrder selects the descending sort key of a member listing.
type UserOrder string

const (
	OrderByCreated    UserOrder = "created"
	OrderByLastActive UserOrder = "lastActive"
)

// ParseUserOrder maps s to a UserOrder. Anything other than "created"
// falls back to OrderByLastActive.
func ParseUserOrder(s string) UserOrder {
	if UserOrder(strings.TrimSpace(s)) == OrderByCreated {
		return OrderByCreated
	}
	return OrderByLastActive
}

// UserParams holds the filters of a member listing.
type UserParams struct {
	UserID     uint
	Gender     string
	Likers     bool
	Likees     bool
	MinAge     int
	MaxAge     int
	OrderBy    UserOrder
	PageNumber int
	PageSize   int
}

// NewUserParams returns listing params for userID with every default applied.
// Gender is left empty; callers must set it.
func NewUserParams(userID uint) UserParams {
	return UserParams{
		UserID:     userID,
		MinAge:     DefaultMinAge,
		MaxAge:     DefaultMaxAge,
		OrderBy:    OrderByLastActive,
		PageNumber: DefaultPageNumber,
		PageSize:   DefaultPageSize,
	}
}

// HasAgeFilter reports whether the age bounds differ from the 18..99 defaults.
// The default range applies no date-of-birth filter at all.
func (p UserParams) HasAgeFilter() bool {
	return p.MinAge != DefaultMinAge || p.MaxAge != DefaultMaxAge
}

// MessageContainer selects which side of a conversation a listing reads.
type MessageContainer string

const (
	ContainerInbox  MessageContainer = "Inbox"
	ContainerOutbox MessageContainer = "Outbox"
	ContainerUnread MessageContainer = "Unread"
)

// ParseMessageContainer maps s to a MessageContainer, ignoring case.
// Unknown values fall back to ContainerUnread.
func ParseMessageContainer(s string) MessageContainer {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, string(ContainerInbox)):
		return ContainerInbox
	case strings.EqualFold(s, string(ContainerOutbox)):
		return ContainerOutbox
	default:
		return ContainerUnread
	}
}

// MessageParams holds the filters of a message listing.
type MessageParams struct {
	UserID           uint
	MessageContainer MessageContainer
	PageNumber       int
	PageSize         int
}

// NewMessageParams returns listing params for userID with every default applied.
func NewMessageParams(userID uint) MessageParams {
	return MessageParams{
		UserID:           userID,
		MessageContainer: ContainerUnread,
		PageNumber:       DefaultPageNumber,
		PageSize:         DefaultPageSize,
	}
}
