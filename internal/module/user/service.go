package user

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/simp-lee/dating/internal/domain"
)

// userService implements domain.UserService.
type userService struct {
	repo domain.UserRepository
	now  func() time.Time
}

// NewUserService creates a new UserService with the given repository.
func NewUserService(repo domain.UserRepository) domain.UserService {
	return &userService{repo: repo, now: time.Now}
}

// Register validates input, hashes the password and persists the new member.
func (s *userService) Register(ctx context.Context, in domain.RegisterInput) (*domain.User, error) {
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	in.Gender = strings.ToLower(strings.TrimSpace(in.Gender))
	in.KnownAs = strings.TrimSpace(in.KnownAs)
	if err := validateRegisterInput(in, s.now()); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewAppError(domain.CodeInternal, "failed to hash password", err)
	}

	now := s.now()
	user := &domain.User{
		BaseModel:    domain.BaseModel{CreatedAt: now},
		Username:     in.Username,
		PasswordHash: string(hash),
		Gender:       in.Gender,
		DateOfBirth:  in.DateOfBirth,
		KnownAs:      in.KnownAs,
		LastActive:   now,
		City:         strings.TrimSpace(in.City),
		Country:      strings.TrimSpace(in.Country),
	}
	if user.KnownAs == "" {
		user.KnownAs = in.Username
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if domain.IsAlreadyExists(err) {
			return nil, domain.NewAppError(domain.CodeAlreadyExists, "username is already taken", err)
		}
		return nil, err
	}

	slog.InfoContext(ctx, "member registered", slog.Uint64("user_id", uint64(user.ID)))
	return user, nil
}

// GetUser retrieves a member with photos.
func (s *userService) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	return s.repo.GetUser(ctx, id)
}

// ListUsers returns one page of members. Without an explicit gender the
// listing shows the gender opposite to the requesting member's.
func (s *userService) ListUsers(ctx context.Context, params domain.UserParams) (*domain.Page[domain.User], error) {
	if strings.TrimSpace(params.Gender) == "" {
		current, err := s.repo.GetUser(ctx, params.UserID)
		if err != nil {
			return nil, err
		}
		params.Gender = oppositeGender(current.Gender)
	}

	slog.DebugContext(ctx, "listing members",
		slog.Uint64("user_id", uint64(params.UserID)),
		slog.String("gender", params.Gender),
		slog.Int("page_number", params.PageNumber),
		slog.Int("page_size", params.PageSize),
	)
	return s.repo.GetUsers(ctx, params)
}

// UpdateProfile loads the member, applies the profile text and persists it.
func (s *userService) UpdateProfile(ctx context.Context, id uint, in domain.ProfileInput) (*domain.User, error) {
	user, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Introduction = strings.TrimSpace(in.Introduction)
	user.LookingFor = strings.TrimSpace(in.LookingFor)
	user.Interests = strings.TrimSpace(in.Interests)
	user.City = strings.TrimSpace(in.City)
	user.Country = strings.TrimSpace(in.Country)

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LikeUser records that userID likes recipientID. Liking twice is a conflict.
func (s *userService) LikeUser(ctx context.Context, userID, recipientID uint) error {
	if userID == recipientID {
		return domain.NewAppError(domain.CodeValidation, "you cannot like yourself", nil)
	}

	existing, err := s.repo.GetLike(ctx, userID, recipientID)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.NewAppError(domain.CodeAlreadyExists, "you already like this member", nil)
	}

	if _, err := s.repo.GetUser(ctx, recipientID); err != nil {
		return err
	}

	return s.repo.AddLike(ctx, &domain.Like{LikerID: userID, LikeeID: recipientID})
}

// AddPhoto attaches a photo to the member. The first photo becomes the main one.
func (s *userService) AddPhoto(ctx context.Context, userID uint, url, description string) (*domain.Photo, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "url is required", nil)
	}

	current, err := s.repo.GetMainPhotoForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	photo := &domain.Photo{
		URL:         url,
		Description: strings.TrimSpace(description),
		IsMain:      current == nil,
		UserID:      userID,
	}
	if err := s.repo.AddPhoto(ctx, photo); err != nil {
		return nil, err
	}
	return photo, nil
}

// GetPhoto returns a photo owned by userID.
func (s *userService) GetPhoto(ctx context.Context, userID, photoID uint) (*domain.Photo, error) {
	photo, err := s.repo.GetPhoto(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if photo.UserID != userID {
		return nil, domain.NewAppError(domain.CodeNotFound, "photo not found", nil)
	}
	return photo, nil
}

// SetMainPhoto makes photoID the member's main photo and demotes the previous one.
func (s *userService) SetMainPhoto(ctx context.Context, userID, photoID uint) error {
	photo, err := s.GetPhoto(ctx, userID, photoID)
	if err != nil {
		return err
	}
	if photo.IsMain {
		return domain.NewAppError(domain.CodeValidation, "this is already the main photo", nil)
	}

	current, err := s.repo.GetMainPhotoForUser(ctx, userID)
	if err != nil {
		return err
	}

	photo.IsMain = true
	if current == nil {
		return s.repo.UpdatePhotos(ctx, photo)
	}
	current.IsMain = false
	return s.repo.UpdatePhotos(ctx, current, photo)
}

func oppositeGender(gender string) string {
	if strings.EqualFold(gender, "male") {
		return "female"
	}
	return "male"
}

// validateRegisterInput checks the registration fields. Username and gender
// are expected to be normalised by the caller.
func validateRegisterInput(in domain.RegisterInput, now time.Time) error {
	nameLen := utf8.RuneCountInString(in.Username)
	if nameLen == 0 {
		return domain.NewAppError(domain.CodeValidation, "username is required", nil)
	}
	if nameLen > 100 {
		return domain.NewAppError(domain.CodeValidation, "username must not exceed 100 characters", nil)
	}
	if len(in.Password) < 4 {
		return domain.NewAppError(domain.CodeValidation, "password must be at least 4 characters", nil)
	}
	if len(in.Password) > 72 {
		return domain.NewAppError(domain.CodeValidation, "password must not exceed 72 characters", nil)
	}
	if in.Gender != "male" && in.Gender != "female" {
		return domain.NewAppError(domain.CodeValidation, "gender must be male or female", nil)
	}
	if in.DateOfBirth.IsZero() {
		return domain.NewAppError(domain.CodeValidation, "date of birth is required", nil)
	}
	age := (&domain.User{DateOfBirth: in.DateOfBirth}).Age(now)
	if age < domain.DefaultMinAge {
		return domain.NewAppError(domain.CodeValidation, "members must be at least 18 years old", nil)
	}
	return nil
}
