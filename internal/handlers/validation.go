package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apierrors "github.com/jonpan30062/newsaferoute/internal/errors"
	"github.com/jonpan30062/newsaferoute/internal/models"
	"github.com/jonpan30062/newsaferoute/internal/services"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// coordinateTags are the custom tags request structs rely on.
var coordinateTags = map[string]validator.Func{
	"lat": func(fl validator.FieldLevel) bool {
		lat := fl.Field().Float()
		return lat >= models.MinLatitude && lat <= models.MaxLatitude
	},
	"lng": func(fl validator.FieldLevel) bool {
		lng := fl.Field().Float()
		return lng >= models.MinLongitude && lng <= models.MaxLongitude
	},
}

// RegisterValidations adds the coordinate tags to gin's validator and makes
// it report JSON/form field names. Safe to call more than once; every call
// returns the outcome of the first.
func RegisterValidations() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		registerErr = registerTags(v, coordinateTags)
	})
	return registerErr
}

func registerTags(v *validator.Validate, tags map[string]validator.Func) error {
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %q validation: %w", tag, err)
		}
	}
	v.RegisterTagNameFunc(fieldName)
	return nil
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

// bindJSON decodes the body into dst and writes a 400 on failure.
func bindJSON(c *gin.Context, dst interface{}) bool {
	return bindWith(c, c.ShouldBindJSON(dst), "Invalid request body")
}

// bindQuery decodes the query string into dst and writes a 400 on failure.
func bindQuery(c *gin.Context, dst interface{}) bool {
	return bindWith(c, c.ShouldBindQuery(dst), "Invalid query parameters")
}

func bindWith(c *gin.Context, err error, message string) bool {
	if err == nil {
		return true
	}
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apierrors.ValidationError(c, validationErrors)
		return false
	}
	apierrors.BadRequest(c, message, nil)
	return false
}

// parseID reads a positive integer path parameter, writing a 400 if it is
// malformed.
func parseID(c *gin.Context, param string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(param), 10, 64)
	if err != nil || id <= 0 {
		apierrors.BadRequest(c, "Invalid "+param, map[string]interface{}{
			param: c.Param(param),
		})
		return 0, false
	}
	return id, true
}

// respondError maps a service error onto the HTTP error envelope. resource
// names the entity in not-found messages.
func respondError(c *gin.Context, err error, resource string) {
	var domainErrors models.ValidationErrors
	switch {
	case errors.As(err, &domainErrors):
		apierrors.DomainValidationError(c, domainErrors)
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, resource+" not found")
	case errors.Is(err, services.ErrMissingLocation):
		apierrors.MissingLocation(c, "Concern has no coordinates and cannot be shown on the map")
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.InvalidStatus(c, "")
	case errors.Is(err, services.ErrAlreadyResolved):
		apierrors.Conflict(c, "Concern is already resolved", services.CodeAlreadyResolved)
	case errors.Is(err, services.ErrNotApprovable):
		apierrors.Conflict(c, "Concern cannot be approved in its current status", services.CodeNotApprovable)
	default:
		apierrors.InternalServerError(c, "An unexpected error occurred", err)
	}
}
