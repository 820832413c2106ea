package handlers

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"runtime/debug"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/rlaxodnjs199/natours-api/internal/apperror"
	"github.com/rlaxodnjs199/natours-api/internal/token"
)

// ErrorHandler is the central error translator. Handlers return errors
// instead of formatting responses locally; every failure shape the service
// produces is normalized here into the {status, message} envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	appErr := translate(err)

	if cfg != nil && !cfg.IsProduction() {
		return c.Status(appErr.StatusCode).JSON(fiber.Map{
			"status":  appErr.Status(),
			"message": appErr.Message,
			"error":   err.Error(),
			"stack":   string(debug.Stack()),
		})
	}

	if !appErr.Operational {
		// Programming or unknown fault: log it, hide the detail.
		log.Printf("ERROR %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Something went wrong!",
		})
	}

	return c.Status(appErr.StatusCode).JSON(fiber.Map{
		"status":  appErr.Status(),
		"message": appErr.Message,
	})
}

func translate(err error) *apperror.AppError {
	if appErr, ok := apperror.As(err); ok {
		return appErr
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apperror.New(fiberErr.Code, fiberErr.Message)
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		return apperror.BadRequest(validationMessage(validationErrs))
	}

	if mongo.IsDuplicateKeyError(err) {
		return apperror.BadRequest(duplicateMessage(err))
	}

	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperror.Unauthorized("Your token has expired! Please log in again.")
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenNotValidYet),
		errors.Is(err, token.ErrInvalid):
		return apperror.Unauthorized("Invalid token. Please log in again.")
	}

	return apperror.Internal(err)
}

// validationMessage joins all field failures into one actionable message.
func validationMessage(errs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(errs))
	for _, fe := range errs {
		msgs = append(msgs, fmt.Sprintf("%s %s", fe.Field(), msgForTag(fe)))
	}
	return "Invalid input data. " + strings.Join(msgs, ". ") + "."
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "eqfield":
		return fmt.Sprintf("must match %s", fe.Param())
	case "ltfield":
		return fmt.Sprintf("must be below %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be %s characters long", fe.Param())
	default:
		return fmt.Sprintf("is invalid (%s)", fe.Tag())
	}
}

// dupKeyRegexp pulls the offending field out of the driver's E11000
// message, e.g. `... dup key: { name: "The Forest Hiker" }`.
var dupKeyRegexp = regexp.MustCompile(`dup key: \{ ([\w.]+):`)

func duplicateMessage(err error) string {
	if m := dupKeyRegexp.FindStringSubmatch(err.Error()); m != nil {
		return fmt.Sprintf("Duplicate field value: %s. Please use another value.", m[1])
	}
	return "Duplicate field value. Please use another value."
}
