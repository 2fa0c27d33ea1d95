package domain

import (
	"context"
	"time"
)

// User is a member profile.
type User struct {
	BaseModel
	Username     string    `gorm:"size:100;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Gender       string    `gorm:"size:20;index;not null" json:"gender"`
	DateOfBirth  time.Time `gorm:"not null" json:"date_of_birth"`
	KnownAs      string    `gorm:"size:100" json:"known_as"`
	LastActive   time.Time `gorm:"index" json:"last_active"`
	Introduction string    `gorm:"type:text" json:"introduction"`
	LookingFor   string    `gorm:"type:text" json:"looking_for"`
	Interests    string    `gorm:"type:text" json:"interests"`
	City         string    `gorm:"size:100" json:"city"`
	Country      string    `gorm:"size:100" json:"country"`
	Photos       []Photo   `json:"photos,omitempty"`
}

// Age returns the number of full years between the user's date of birth and now.
func (u *User) Age(now time.Time) int {
	dob := u.DateOfBirth
	if dob.IsZero() {
		return 0
	}
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// MainPhoto returns the photo flagged as main, or nil.
func (u *User) MainPhoto() *Photo {
	for i := range u.Photos {
		if u.Photos[i].IsMain {
			return &u.Photos[i]
		}
	}
	return nil
}

// Photo is an image attached to a user profile. CreatedAt is the date it was added.
type Photo struct {
	BaseModel
	URL         string `gorm:"size:512;not null" json:"url"`
	Description string `gorm:"size:255" json:"description"`
	IsMain      bool   `gorm:"not null;default:false" json:"is_main"`
	UserID      uint   `gorm:"index;not null" json:"user_id"`
}

// Like records that LikerID likes LikeeID.
type Like struct {
	LikerID uint `gorm:"primaryKey;autoIncrement:false" json:"liker_id"`
	LikeeID uint `gorm:"primaryKey;autoIncrement:false;index" json:"likee_id"`
}

// RegisterInput carries the fields accepted when a new member signs up.
type RegisterInput struct {
	Username    string
	Password    string
	Gender      string
	KnownAs     string
	DateOfBirth time.Time
	City        string
	Country     string
}

// ProfileInput carries the editable profile text.
type ProfileInput struct {
	Introduction string
	LookingFor   string
	Interests    string
	City         string
	Country      string
}

// UserRepository defines the data access interface for users, their photos and likes.
//
// GetLike and GetMainPhotoForUser return (nil, nil) when nothing matches:
// "no prior like" and "no main photo" are ordinary states.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uint) (*User, error)
	GetUsers(ctx context.Context, params UserParams) (*Page[User], error)
	GetLike(ctx context.Context, userID, recipientID uint) (*Like, error)
	AddLike(ctx context.Context, like *Like) error
	GetPhoto(ctx context.Context, id uint) (*Photo, error)
	GetMainPhotoForUser(ctx context.Context, userID uint) (*Photo, error)
	AddPhoto(ctx context.Context, photo *Photo) error
	UpdatePhotos(ctx context.Context, photos ...*Photo) error
}

// UserService defines the business logic interface for users.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*User, error)
	GetUser(ctx context.Context, id uint) (*User, error)
	ListUsers(ctx context.Context, params UserParams) (*Page[User], error)
	UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*User, error)
	LikeUser(ctx context.Context, userID, recipientID uint) error
	AddPhoto(ctx context.Context, userID uint, url, description string) (*Photo, error)
	GetPhoto(ctx context.Context, userID, photoID uint) (*Photo, error)
	SetMainPhoto(ctx context.Context, userID, photoID uint) error
}
