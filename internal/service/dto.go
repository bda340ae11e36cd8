package service

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"usersvc/m/domain"
	"usersvc/m/internal/apperr"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// UserCreateDTO is the inbound shape of a new user.
type UserCreateDTO struct {
	Name     string  `json:"name" validate:"required"`
	Age      *int    `json:"age" validate:"required,gte=0"`
	Nickname *string `json:"nickname,omitempty"`
}

// Validate checks the DTO rules and returns an *apperr.ValidationError listing
// every rejected field.
func (d UserCreateDTO) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.WithStack(err)
	}
	details := make([]apperr.FieldError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		details = append(details, apperr.FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe),
		})
	}
	return &apperr.ValidationError{Details: details}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed on the %s rule", fe.Field(), fe.Tag())
	}
}

// UserResponse is the outbound shape of a persisted user.
type UserResponse struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Age      int     `json:"age"`
	Nickname *string `json:"nickname"`
}

func toResponse(u domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Age: u.Age, Nickname: u.Nickname}
}
