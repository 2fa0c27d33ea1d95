package pkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/simp-lee/dating/internal/domain"
)

// PaginationHeader carries the page counters of list responses as JSON.
const PaginationHeader = "Pagination"

// Response is the standard JSON envelope for API responses.
type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

// ValidationErrorResponse is the JSON envelope for validation error responses.
type ValidationErrorResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors"`
}

// Success sends data in a 200 envelope.
func Success(c *gin.Context, data any) { respond(c, http.StatusOK, data) }

// Created sends data in a 201 envelope.
func Created(c *gin.Context, data any) { respond(c, http.StatusCreated, data) }

// List sends one page of a listing in a 200 envelope.
func List(c *gin.Context, result any) { respond(c, http.StatusOK, result) }

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, Response{Code: status, Message: "success", Data: data})
}

// Error writes err as an envelope. AppError messages reach the client;
// anything else is reported as a bare 500.
func Error(c *gin.Context, err error) {
	status := domain.HTTPStatusCode(err)
	msg := "internal error"
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	c.JSON(status, Response{Code: status, Message: msg})
}

// Paged sets the Pagination header from meta and sends data as a list response.
func Paged(c *gin.Context, meta domain.PageMeta, data any) {
	SetPaginationHeader(c, meta)
	List(c, data)
}

// SetPaginationHeader writes meta as JSON into the Pagination response header.
// Browsers can read it only when the CORS middleware exposes it.
func SetPaginationHeader(c *gin.Context, meta domain.PageMeta) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return
	}
	c.Header(PaginationHeader, string(raw))
}

// ValidationError sends a 400 JSON response with per-field validation error details.
// It detects validator.ValidationErrors and extracts field-level messages.
func ValidationError(c *gin.Context, err error) {
	validationErrorWithType(c, err, nil)
}

// BindAndValidate binds the request body to obj and validates it.
// On failure it sends a ValidationError response and returns false.
//
//	if !pkg.BindAndValidate(c, &req) { return }
func BindAndValidate(c *gin.Context, obj any) bool {
	if err := c.ShouldBind(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

// BindQuery binds and validates query-string parameters into obj.
func BindQuery(c *gin.Context, obj any) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		validationErrorWithType(c, err, obj)
		return false
	}
	return true
}

func validationErrorWithType(c *gin.Context, err error, obj any) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		c.JSON(http.StatusBadRequest, Response{Code: http.StatusBadRequest, Message: "bad request"})
		return
	}

	names := buildFieldNameMap(obj)

	fieldErrors := make(map[string]string, len(ve))
	for _, fe := range ve {
		name, ok := names[fe.StructField()]
		if !ok {
			name = strings.ToLower(fe.Field())
		}
		fieldErrors[name] = fieldMessage(fe)
	}

	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Code:    http.StatusBadRequest,
		Message: "validation error",
		Errors:  fieldErrors,
	})
}

// fieldMessage renders a human readable message for a failed validation rule.
func fieldMessage(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "url":
		return "Must be a valid URL"
	case "datetime":
		return "Must be a date formatted as " + fe.Param()
	case "min", "gte":
		return fmt.Sprintf("Must be at least %s%s", fe.Param(), unit)
	case "max", "lte":
		return fmt.Sprintf("Must be at most %s%s", fe.Param(), unit)
	case "oneof":
		return "Must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("Failed on the '%s' rule", fe.Tag())
	}
}

// buildFieldNameMap maps struct field names to their JSON tag name, or to
// their form tag name when no JSON tag is set. Returns nil for non-structs.
func buildFieldNameMap(obj any) map[string]string {
	if obj == nil {
		return nil
	}
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil
	}
	m := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if name := parseTagName(f.Tag.Get("json")); name != "" {
			m[f.Name] = name
			continue
		}
		if name := parseTagName(f.Tag.Get("form")); name != "" {
			m[f.Name] = name
		}
	}
	return m
}

func parseTagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return ""
	}
	return name
}
