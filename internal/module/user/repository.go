package user

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/simp-lee/dating/internal/domain"
	"github.com/simp-lee/dating/internal/pkg"
	"github.com/simp-lee/dating/internal/query"
)

// Sort columns for member listings.
var orderColumns = map[domain.UserOrder]string{
	domain.OrderByCreated:    "created_at",
	domain.OrderByLastActive: "last_active",
}

// userRepository implements domain.UserRepository using GORM.
type userRepository struct {
	db     *gorm.DB
	likes  domain.Store[domain.Like]
	photos domain.Store[domain.Photo]
	now    func() time.Time
}

// NewUserRepository creates a new UserRepository backed by the given GORM database.
func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{
		db:     db,
		likes:  pkg.NewStore[domain.Like](db),
		photos: pkg.NewStore[domain.Photo](db),
		now:    time.Now,
	}
}

// Create inserts a new user together with any photos it carries.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return pkg.MapDBError(err, "")
	}
	return nil
}

// Update saves the scalar fields of an existing user.
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error; err != nil {
		return pkg.MapDBError(err, "")
	}
	return nil
}

// GetUser retrieves a user by its primary key with its photos.
func (r *userRepository) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Scopes(withPhotos).First(&user, id).Error; err != nil {
		return nil, pkg.MapDBError(err, "member not found")
	}
	return &user, nil
}

// GetUsers returns one page of members matching params.
func (r *userRepository) GetUsers(ctx context.Context, params domain.UserParams) (*domain.Page[domain.User], error) {
	if strings.TrimSpace(params.Gender) == "" {
		return nil, domain.InvalidArgument("gender is required")
	}
	if err := query.ValidatePage(params.PageNumber, params.PageSize); err != nil {
		return nil, err
	}

	base := r.db.WithContext(ctx).Model(&domain.User{}).
		Scopes(r.memberFilters(params)).
		Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, pkg.MapDBError(err, "")
	}

	users := []domain.User{}
	if query.HasPage(params.PageNumber, params.PageSize, total) {
		column := orderColumns[domain.ParseUserOrder(string(params.OrderBy))]
		if err := base.Scopes(
			pkg.OrderDesc(column),
			pkg.Paginate(params.PageNumber, params.PageSize),
			withPhotos,
		).Find(&users).Error; err != nil {
			return nil, pkg.MapDBError(err, "")
		}
	}

	return query.NewPage(users, total, params.PageNumber, params.PageSize), nil
}

// memberFilters pushes the member listing predicates into SQL.
func (r *userRepository) memberFilters(p domain.UserParams) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("id <> ?", p.UserID).Where("gender = ?", p.Gender)
		if p.Likers {
			db = db.Where("id IN (?)", r.likeIDs("liker_id", "likee_id", p.UserID))
		}
		if p.Likees {
			db = db.Where("id IN (?)", r.likeIDs("likee_id", "liker_id", p.UserID))
		}
		if p.HasAgeFilter() {
			minDOB, maxDOB := query.DOBRange(p.MinAge, p.MaxAge, r.now())
			db = db.Where("date_of_birth >= ? AND date_of_birth <= ?", minDOB, maxDOB)
		}
		return db
	}
}

// likeIDs selects column from the likes rows whose match column equals userID.
func (r *userRepository) likeIDs(column, match string, userID uint) *gorm.DB {
	return r.db.Model(&domain.Like{}).Select(column).Where(match+" = ?", userID)
}

// GetLike returns the like from userID to recipientID, or nil when there is none.
func (r *userRepository) GetLike(ctx context.Context, userID, recipientID uint) (*domain.Like, error) {
	var like domain.Like
	result := r.db.WithContext(ctx).
		Where("liker_id = ? AND likee_id = ?", userID, recipientID).
		Limit(1).Find(&like)
	if result.Error != nil {
		return nil, pkg.MapDBError(result.Error, "")
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &like, nil
}

// AddLike inserts like.
func (r *userRepository) AddLike(ctx context.Context, like *domain.Like) error {
	return r.likes.Add(ctx, like)
}

// GetPhoto retrieves a photo by its primary key.
func (r *userRepository) GetPhoto(ctx context.Context, id uint) (*domain.Photo, error) {
	var photo domain.Photo
	if err := r.db.WithContext(ctx).First(&photo, id).Error; err != nil {
		return nil, pkg.MapDBError(err, "photo not found")
	}
	return &photo, nil
}

// GetMainPhotoForUser returns the main photo of userID, or nil when it has none.
func (r *userRepository) GetMainPhotoForUser(ctx context.Context, userID uint) (*domain.Photo, error) {
	var photo domain.Photo
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND is_main = ?", userID, true).
		Limit(1).Find(&photo)
	if result.Error != nil {
		return nil, pkg.MapDBError(result.Error, "")
	}
	if result.RowsAffected == 0 {
		return nil, nil
	}
	return &photo, nil
}

// AddPhoto inserts photo for an existing user.
func (r *userRepository) AddPhoto(ctx context.Context, photo *domain.Photo) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", photo.UserID).Count(&count).Error; err != nil {
		return pkg.MapDBError(err, "")
	}
	if count == 0 {
		return domain.NewAppError(domain.CodeNotFound, "member not found", nil)
	}
	return r.photos.Add(ctx, photo)
}

// UpdatePhotos saves all photos in one transaction.
func (r *userRepository) UpdatePhotos(ctx context.Context, photos ...*domain.Photo) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		for _, p := range photos {
			result := tx.Model(p).Select("url", "description", "is_main").Updates(p)
			if result.Error != nil {
				return pkg.MapDBError(result.Error, "")
			}
			if result.RowsAffected == 0 {
				return domain.NewAppError(domain.CodeNotFound, "photo not found", nil)
			}
		}
		return nil
	})
}

// withPhotos eagerly loads photos in id order.
func withPhotos(db *gorm.DB) *gorm.DB {
	return db.Preload("Photos", func(db *gorm.DB) *gorm.DB {
		return db.Order("id")
	})
}
