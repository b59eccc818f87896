package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/cijene-me/cijene-api/internal/auth"
	apperrors "github.com/cijene-me/cijene-api/pkg/util"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// bindBody parses the request body into dst and validates it.
func bindBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.NewValidationError("invalid request body", map[string]any{"body": err.Error()})
	}
	return validateStruct(dst)
}

// bindQuery parses the query string into dst and validates it.
func bindQuery(c *fiber.Ctx, dst any) error {
	if err := c.QueryParser(dst); err != nil {
		return apperrors.NewValidationError("invalid query parameters", map[string]any{"query": err.Error()})
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.NewInternalError(err)
	}
	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = describe(fe)
	}
	return apperrors.NewValidationError("invalid input", details)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}

// idParam reads a positive integer path parameter.
func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid path parameter", map[string]any{name: "must be a positive integer"})
	}
	return id, nil
}

// actorID returns the authenticated user's id.
func actorID(c *fiber.Ctx) (int64, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return 0, apperrors.NewUnauthorized("not authenticated")
	}
	return p.UserID, nil
}
