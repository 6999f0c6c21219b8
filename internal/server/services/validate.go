package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/wonderfulrabbits/rabbitsapi/internal/common"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RegisterRequest carries a new account.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=16"`
	Password string `json:"password" validate:"required,max=72"`
	Email    string `json:"email" validate:"required,email,max=254"`
}

// UpdateUserRequest changes only the fields that are present.
type UpdateUserRequest struct {
	Username *string `json:"username" validate:"omitempty,min=1,max=16"`
	Password *string `json:"password" validate:"omitempty,min=1,max=72"`
	Email    *string `json:"email" validate:"omitempty,email,max=254"`
}

// RegisterRabbitRequest creates a rabbit. UserID defaults to the caller.
type RegisterRabbitRequest struct {
	Name      string     `json:"name" validate:"required,max=16"`
	Birthdate *time.Time `json:"birthdate"`
	UserID    *int64     `json:"user_id" validate:"omitempty,gt=0"`
}

type UpdateRabbitRequest struct {
	Name      *string    `json:"name" validate:"omitempty,min=1,max=16"`
	Birthdate *time.Time `json:"birthdate"`
}

// UploadPhotoRequest carries base64 encoded image bytes stored inline.
type UploadPhotoRequest struct {
	RabbitID  int64  `json:"rabbit_id" validate:"required,gt=0"`
	Title     string `json:"title" validate:"required,max=200"`
	ImageData string `json:"image_data" validate:"required,base64"`
}

// UploadImageRequest carries base64 encoded image bytes kept in the blob store.
type UploadImageRequest struct {
	RabbitID        int64  `json:"rabbit_id" validate:"required,gt=0"`
	Title           string `json:"title" validate:"required,max=200"`
	Base64ImageData string `json:"base64_image_data" validate:"required,base64"`
	FileName        string `json:"file_name" validate:"omitempty,max=255"`
	FileExtension   string `json:"file_extension" validate:"omitempty,max=16"`
}

// validateStruct runs the struct tags and folds failures into a single
// common.ErrValidation error naming the offending fields.
func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return fmt.Errorf("%w: %s", common.ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
	case "email":
		return fe.Field() + " must be a valid email address"
	case "base64":
		return fe.Field() + " must be base64 encoded"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrValidation, fmt.Sprintf(format, args...))
}
