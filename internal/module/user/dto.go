package user

import (
	"time"

	"github.com/simp-lee/dating/internal/domain"
)

// dateLayout is the wire format of dates of birth.
const dateLayout = "2006-01-02"

// RegisterRequest represents the input for registering a new member.
type RegisterRequest struct {
	Username    string `json:"username" binding:"required,min=2,max=100"`
	Password    string `json:"password" binding:"required,min=4,max=72"`
	Gender      string `json:"gender" binding:"required,oneof=male female"`
	KnownAs     string `json:"known_as" binding:"max=100"`
	DateOfBirth string `json:"date_of_birth" binding:"required,datetime=2006-01-02"`
	City        string `json:"city" binding:"max=100"`
	Country     string `json:"country" binding:"max=100"`
}

// UpdateProfileRequest represents the editable profile text.
type UpdateProfileRequest struct {
	Introduction string `json:"introduction" binding:"max=2000"`
	LookingFor   string `json:"looking_for" binding:"max=2000"`
	Interests    string `json:"interests" binding:"max=2000"`
	City         string `json:"city" binding:"max=100"`
	Country      string `json:"country" binding:"max=100"`
}

// AddPhotoRequest represents a photo upload reference.
type AddPhotoRequest struct {
	URL         string `json:"url" binding:"required,url,max=512"`
	Description string `json:"description" binding:"max=255"`
}

// ListUsersQuery holds the query-string filters of GET /users.
// pageNumber and pageSize are parsed separately.
type ListUsersQuery struct {
	UserID  uint   `form:"userId" binding:"required"`
	Gender  string `form:"gender" binding:"omitempty,oneof=male female"`
	Likers  bool   `form:"likers"`
	Likees  bool   `form:"likees"`
	MinAge  *int   `form:"minAge" binding:"omitempty,gte=0,lte=150"`
	MaxAge  *int   `form:"maxAge" binding:"omitempty,gte=0,lte=150"`
	OrderBy string `form:"orderBy"`
}

// Params turns the query into listing params with defaults applied.
func (q ListUsersQuery) Params(pageNumber, pageSize int) domain.UserParams {
	p := domain.NewUserParams(q.UserID)
	p.Gender = q.Gender
	p.Likers = q.Likers
	p.Likees = q.Likees
	if q.MinAge != nil {
		p.MinAge = *q.MinAge
	}
	if q.MaxAge != nil {
		p.MaxAge = *q.MaxAge
	}
	p.OrderBy = domain.ParseUserOrder(q.OrderBy)
	p.PageNumber = pageNumber
	p.PageSize = pageSize
	return p
}

// PhotoResponse is the public view of a photo.
type PhotoResponse struct {
	ID          uint      `json:"id"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	DateAdded   time.Time `json:"date_added"`
	IsMain      bool      `json:"is_main"`
}

// MemberResponse is the list view of a member.
type MemberResponse struct {
	ID         uint      `json:"id"`
	Username   string    `json:"username"`
	Gender     string    `json:"gender"`
	Age        int       `json:"age"`
	KnownAs    string    `json:"known_as"`
	Created    time.Time `json:"created"`
	LastActive time.Time `json:"last_active"`
	City       string    `json:"city"`
	Country    string    `json:"country"`
	PhotoURL   string    `json:"photo_url"`
}

// MemberDetailResponse is the full profile of a member.
type MemberDetailResponse struct {
	MemberResponse
	Introduction string          `json:"introduction"`
	LookingFor   string          `json:"looking_for"`
	Interests    string          `json:"interests"`
	Photos       []PhotoResponse `json:"photos"`
}

func toPhotoResponse(p domain.Photo) PhotoResponse {
	return PhotoResponse{
		ID:          p.ID,
		URL:         p.URL,
		Description: p.Description,
		DateAdded:   p.CreatedAt,
		IsMain:      p.IsMain,
	}
}

// toMemberResponse builds the list view, computing age at now.
func toMemberResponse(u domain.User, now time.Time) MemberResponse {
	resp := MemberResponse{
		ID:         u.ID,
		Username:   u.Username,
		Gender:     u.Gender,
		Age:        u.Age(now),
		KnownAs:    u.KnownAs,
		Created:    u.CreatedAt,
		LastActive: u.LastActive,
		City:       u.City,
		Country:    u.Country,
	}
	if main := u.MainPhoto(); main != nil {
		resp.PhotoURL = main.URL
	}
	return resp
}

func toMemberDetailResponse(u domain.User, now time.Time) MemberDetailResponse {
	photos := make([]PhotoResponse, 0, len(u.Photos))
	for _, p := range u.Photos {
		photos = append(photos, toPhotoResponse(p))
	}
	return MemberDetailResponse{
		MemberResponse: toMemberResponse(u, now),
		Introduction:   u.Introduction,
		LookingFor:     u.LookingFor,
		Interests:      u.Interests,
		Photos:         photos,
	}
}
