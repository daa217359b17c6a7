package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gator-hub/gator-hub/internal/domain/notification"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST BODIES
// ══════════════════════════════════════════════════════════════════════════════

// AddStudentRequest is the body of POST /api/v1/students.
type AddStudentRequest struct {
	ID     string `json:"id" validate:"required,max=64"`
	Name   string `json:"name" validate:"required,max=120"`
	Grade  string `json:"grade" validate:"max=40"`
	Avatar string `json:"avatar,omitempty" validate:"omitempty,max=512"`
}

// SelectStudentRequest is the body of PUT /api/v1/students/selected.
// A null id clears the selection.
type SelectStudentRequest struct {
	ID *string `json:"id" validate:"omitempty,min=1,max=64"`
}

// CreateNotificationRequest is the body of POST /api/v1/notifications.
type CreateNotificationRequest struct {
	Title    string `json:"title" validate:"required,max=200"`
	Message  string `json:"message" validate:"max=4000"`
	Type     string `json:"type" validate:"required,oneof=general urgent event academic"`
	Category string `json:"category,omitempty" validate:"omitempty,max=60"`
}

// Draft converts the request into a notification draft.
func (r CreateNotificationRequest) Draft() notification.Draft {
	return notification.Draft{
		Title:    strings.TrimSpace(r.Title),
		Message:  r.Message,
		Type:     notification.Type(r.Type),
		Category: r.Category,
	}
}

// SendMessageRequest is the body of POST /api/v1/chat/messages.
type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// OpenSuggestionRequest is the body of POST /api/v1/chat/suggestions/open.
type OpenSuggestionRequest struct {
	Label string `json:"label" validate:"required,max=120"`
}

// ══════════════════════════════════════════════════════════════════════════════
// DECODING & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

// validationError is a request that failed decoding or validation.
type validationError struct {
	message string
	fields  map[string]string
}

func (e *validationError) Error() string {
	return e.message
}

// decodeJSON decodes the body into dest and validates it. Unknown fields are
// rejected.
func decodeJSON(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return &validationError{message: "request body is required"}
		}
		return &validationError{message: "invalid request body", fields: map[string]string{"body": err.Error()}}
	}

	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return &validationError{message: "validation failed", fields: map[string]string{"body": err.Error()}}
	}
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		fields[fe.Field()] = validationMessage(fe)
	}
	return &validationError{message: "validation failed", fields: fields}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "is invalid"
}
