// Package memory keeps members, photos, likes and messages in process memory.
// It backs the "memory" database driver and serves every listing through the
// query engine, so it answers exactly like the SQL repositories do.
package memory

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/simp-lee/dating/internal/domain"
)

type likeKey struct {
	liker, likee uint
}

// Dataset is the shared in-memory state behind the memory repositories.
// It is safe for concurrent use.
type Dataset struct {
	mu       sync.RWMutex
	now      func() time.Time
	users    map[uint]domain.User
	photos   map[uint]domain.Photo
	likes    map[likeKey]struct{}
	messages map[uint]domain.Message

	nextUserID    uint
	nextPhotoID   uint
	nextMessageID uint
}

// Option configures a Dataset.
type Option func(*Dataset)

// WithClock sets the time source used for timestamps and age windows.
func WithClock(now func() time.Time) Option {
	return func(d *Dataset) {
		if now != nil {
			d.now = now
		}
	}
}

// NewDataset returns an empty dataset.
func NewDataset(opts ...Option) *Dataset {
	d := &Dataset{
		now:           time.Now,
		users:         make(map[uint]domain.User),
		photos:        make(map[uint]domain.Photo),
		likes:         make(map[likeKey]struct{}),
		messages:      make(map[uint]domain.Message),
		nextUserID:    1,
		nextPhotoID:   1,
		nextMessageID: 1,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// stamp fills the timestamps of a new row. Caller holds the write lock.
func (d *Dataset) stamp(m *domain.BaseModel) {
	now := d.now()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	m.UpdatedAt = now
}

// photosOf returns the photos of userID ordered by id. Caller holds a lock.
func (d *Dataset) photosOf(userID uint) []domain.Photo {
	var out []domain.Photo
	for _, p := range d.photos {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b domain.Photo) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

// hydrate returns a copy of the stored user with its photos. Caller holds a lock.
func (d *Dataset) hydrate(id uint) (domain.User, bool) {
	u, ok := d.users[id]
	if !ok {
		return domain.User{}, false
	}
	u.Photos = d.photosOf(id)
	return u, true
}

// userPtr is hydrate returning a pointer, or nil for unknown ids.
func (d *Dataset) userPtr(id uint) *domain.User {
	u, ok := d.hydrate(id)
	if !ok {
		return nil
	}
	return &u
}

// withParties attaches sender and recipient to a copy of m. Caller holds a lock.
func (d *Dataset) withParties(m domain.Message) domain.Message {
	m.Sender = d.userPtr(m.SenderID)
	m.Recipient = d.userPtr(m.RecipientID)
	return m
}
