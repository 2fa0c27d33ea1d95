package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/simp-lee/dating/internal/domain"
	"github.com/simp-lee/dating/internal/query"
)

// userRepository implements domain.UserRepository over a Dataset.
type userRepository struct {
	d *Dataset
}

// NewUserRepository returns a domain.UserRepository reading and writing d.
func NewUserRepository(d *Dataset) domain.UserRepository {
	return &userRepository{d: d}
}

// Create stores a new user and any photos it carries.
func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	for _, u := range r.d.users {
		if u.Username == user.Username {
			return domain.NewAppError(domain.CodeAlreadyExists, "already exists", nil)
		}
	}

	user.ID = r.d.nextUserID
	r.d.nextUserID++
	r.d.stamp(&user.BaseModel)

	for i := range user.Photos {
		p := &user.Photos[i]
		p.ID = r.d.nextPhotoID
		r.d.nextPhotoID++
		p.UserID = user.ID
		r.d.stamp(&p.BaseModel)
		r.d.photos[p.ID] = *p
	}

	stored := *user
	stored.Photos = nil
	r.d.users[user.ID] = stored
	return nil
}

// Update saves the scalar fields of an existing user. Photos are written
// through AddPhoto and UpdatePhotos.
func (r *userRepository) Update(_ context.Context, user *domain.User) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.users[user.ID]; !ok {
		return domain.ErrNotFound
	}
	user.UpdatedAt = r.d.now()
	stored := *user
	stored.Photos = nil
	r.d.users[user.ID] = stored
	return nil
}

// GetUser returns the user with its photos.
func (r *userRepository) GetUser(_ context.Context, id uint) (*domain.User, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	u, ok := r.d.hydrate(id)
	if !ok {
		return nil, domain.NewAppError(domain.CodeNotFound, "member not found", nil)
	}
	return &u, nil
}

// GetUsers runs a member listing through the query engine.
func (r *userRepository) GetUsers(_ context.Context, params domain.UserParams) (*domain.Page[domain.User], error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	plan, err := query.UserPlan(params, r.relations(params.UserID), r.d.now())
	if err != nil {
		return nil, err
	}

	users := make([]domain.User, 0, len(r.d.users))
	for id := range r.d.users {
		u, _ := r.d.hydrate(id)
		users = append(users, u)
	}
	// Map iteration order is random; start the engine from a fixed order.
	slices.SortFunc(users, func(a, b domain.User) int { return cmp.Compare(a.ID, b.ID) })

	return query.Run(users, plan)
}

// relations collects who likes userID and whom userID likes. Caller holds a lock.
func (r *userRepository) relations(userID uint) query.Relations {
	var rel query.Relations
	for k := range r.d.likes {
		if k.likee == userID {
			rel.Likers = append(rel.Likers, k.liker)
		}
		if k.liker == userID {
			rel.Likees = append(rel.Likees, k.likee)
		}
	}
	return rel
}

// GetLike returns the like from userID to recipientID, or nil when there is none.
func (r *userRepository) GetLike(_ context.Context, userID, recipientID uint) (*domain.Like, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	if _, ok := r.d.likes[likeKey{userID, recipientID}]; !ok {
		return nil, nil
	}
	return &domain.Like{LikerID: userID, LikeeID: recipientID}, nil
}

// AddLike records like. A repeated like reports CodeAlreadyExists.
func (r *userRepository) AddLike(_ context.Context, like *domain.Like) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	k := likeKey{like.LikerID, like.LikeeID}
	if _, ok := r.d.likes[k]; ok {
		return domain.NewAppError(domain.CodeAlreadyExists, "already exists", nil)
	}
	r.d.likes[k] = struct{}{}
	return nil
}

// GetPhoto returns a photo by id.
func (r *userRepository) GetPhoto(_ context.Context, id uint) (*domain.Photo, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	p, ok := r.d.photos[id]
	if !ok {
		return nil, domain.NewAppError(domain.CodeNotFound, "photo not found", nil)
	}
	return &p, nil
}

// GetMainPhotoForUser returns the main photo of userID, or nil when it has none.
func (r *userRepository) GetMainPhotoForUser(_ context.Context, userID uint) (*domain.Photo, error) {
	r.d.mu.RLock()
	defer r.d.mu.RUnlock()

	for _, p := range r.d.photosOf(userID) {
		if p.IsMain {
			return &p, nil
		}
	}
	return nil, nil
}

// AddPhoto stores a new photo for an existing user.
func (r *userRepository) AddPhoto(_ context.Context, photo *domain.Photo) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	if _, ok := r.d.users[photo.UserID]; !ok {
		return domain.NewAppError(domain.CodeNotFound, "member not found", nil)
	}
	photo.ID = r.d.nextPhotoID
	r.d.nextPhotoID++
	r.d.stamp(&photo.BaseModel)
	r.d.photos[photo.ID] = *photo
	return nil
}

// UpdatePhotos saves all photos or none of them.
func (r *userRepository) UpdatePhotos(_ context.Context, photos ...*domain.Photo) error {
	r.d.mu.Lock()
	defer r.d.mu.Unlock()

	for _, p := range photos {
		if _, ok := r.d.photos[p.ID]; !ok {
			return domain.NewAppError(domain.CodeNotFound, "photo not found", nil)
		}
	}
	now := r.d.now()
	for _, p := range photos {
		p.UpdatedAt = now
		r.d.photos[p.ID] = *p
	}
	return nil
}
