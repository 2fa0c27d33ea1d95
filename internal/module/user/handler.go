package user

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/dating/internal/domain"
	"github.com/simp-lee/dating/internal/pkg"
)

// UserHandler handles REST API requests for members, their likes and photos.
type UserHandler struct {
	svc   domain.UserService
	pages pkg.PageDefaults
	now   func() time.Time
}

// NewUserHandler creates a new UserHandler with the given service and
// listing defaults.
func NewUserHandler(svc domain.UserService, pages pkg.PageDefaults) *UserHandler {
	return &UserHandler{svc: svc, pages: pages, now: time.Now}
}

// Register handles POST /api/v1/users.
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation, "date_of_birth must be YYYY-MM-DD", err))
		return
	}

	user, err := h.svc.Register(c.Request.Context(), domain.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		Gender:      req.Gender,
		KnownAs:     req.KnownAs,
		DateOfBirth: dob,
		City:        req.City,
		Country:     req.Country,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, toMemberDetailResponse(*user, h.now()))
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(c *gin.Context) {
	var q ListUsersQuery
	if !pkg.BindQuery(c, &q) {
		return
	}
	pageNumber, pageSize, err := pkg.ParsePage(c, h.pages)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	params := q.Params(pageNumber, pageSize)
	if params.MaxAge < params.MinAge {
		pkg.Error(c, domain.NewAppError(domain.CodeValidation,
			fmt.Sprintf("maxAge %d must not be below minAge %d", params.MaxAge, params.MinAge), nil))
		return
	}

	page, err := h.svc.ListUsers(c.Request.Context(), params)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	now := h.now()
	pkg.Paged(c, page.Meta(), pkg.MapPage(page, func(u domain.User) MemberResponse {
		return toMemberResponse(u, now)
	}))
}

// Get handles GET /api/v1/users/:id.
func (h *UserHandler) Get(c *gin.Context) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, toMemberDetailResponse(*user, h.now()))
}

// Update handles PUT /api/v1/users/:id.
func (h *UserHandler) Update(c *gin.Context) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req UpdateProfileRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.UpdateProfile(c.Request.Context(), id, domain.ProfileInput{
		Introduction: req.Introduction,
		LookingFor:   req.LookingFor,
		Interests:    req.Interests,
		City:         req.City,
		Country:      req.Country,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, toMemberDetailResponse(*user, h.now()))
}

// Like handles POST /api/v1/users/:id/like/:recipientId.
func (h *UserHandler) Like(c *gin.Context) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	recipientID, err := pkg.ParamID(c, "recipientId")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.LikeUser(c.Request.Context(), id, recipientID); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}

// AddPhoto handles POST /api/v1/users/:id/photos.
func (h *UserHandler) AddPhoto(c *gin.Context) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	var req AddPhotoRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	photo, err := h.svc.AddPhoto(c.Request.Context(), id, req.URL, req.Description)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Created(c, toPhotoResponse(*photo))
}

// GetPhoto handles GET /api/v1/users/:id/photos/:photoId.
func (h *UserHandler) GetPhoto(c *gin.Context) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	photoID, err := pkg.ParamID(c, "photoId")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	photo, err := h.svc.GetPhoto(c.Request.Context(), id, photoID)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, toPhotoResponse(*photo))
}

// SetMainPhoto handles POST /api/v1/users/:id/photos/:photoId/setMain.
func (h *UserHandler) SetMainPhoto(c *gin.Context) {
	id, err := pkg.ParamID(c, "id")
	if err != nil {
		pkg.Error(c, err)
		return
	}
	photoID, err := pkg.ParamID(c, "photoId")
	if err != nil {
		pkg.Error(c, err)
		return
	}

	if err := h.svc.SetMainPhoto(c.Request.Context(), id, photoID); err != nil {
		pkg.Error(c, err)
		return
	}

	pkg.Success(c, nil)
}
