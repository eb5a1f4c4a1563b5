package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

const dateLayout = "2006-01-02"

func init() {
	// Report json/form names instead of Go field names in binding errors.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

// parseID reads the :id path parameter. On failure it writes a 400 and
// returns false.
func parseID(c *gin.Context, resource string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, fmt.Sprintf("Invalid %s ID", resource))
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body into req. Binding failures are written as a
// 400, with one entry per failing field when the validator reports them.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		writeBindError(c, err, "Invalid request body")
		return false
	}
	return true
}

// bindQuery is bindJSON for query strings.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		writeBindError(c, err, "Invalid query parameters")
		return false
	}
	return true
}

func writeBindError(c *gin.Context, err error, fallback string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		response.BadRequest(c, fallback)
		return
	}

	fieldErrors := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fieldErrors = append(fieldErrors, apperror.FieldError{
			Field:   fieldName(fe),
			Message: fieldMessage(fe),
		})
	}
	response.ValidationError(c, fieldErrors)
}

func fieldMessage(fe validator.FieldError) string {
	name := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "email":
		return name + " must be a valid email address"
	case "uuid":
		return name + " must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min", "gte":
		if fe.Kind() == reflect.String || fe.Kind() == reflect.Slice {
			return fmt.Sprintf("%s must have at least %s characters or items", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", name, fe.Param())
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", name, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", name, fe.Param())
	default:
		return name + " is invalid"
	}
}

// fieldName returns the JSON path of the failing field, e.g.
// items[0].quantity, relying on the tag name func registered in init.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

// pageParams builds pagination from page plus per_page, falling back to
// limit when per_page is absent.
func pageParams(page, perPage, limit int) *pagination.PaginationParams {
	if perPage == 0 {
		perPage = limit
	}
	p := &pagination.PaginationParams{Page: page, PerPage: perPage}
	p.Validate()
	return p
}

// parseDate parses an optional YYYY-MM-DD or RFC 3339 value. Range ends are
// exclusive everywhere, so for a bare date endOfDay moves the result to the
// following midnight and the whole named day is included.
func parseDate(value, field string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return nil, apperror.NewValidationError([]apperror.FieldError{
			{Field: field, Message: field + " must be a date in YYYY-MM-DD format"},
		})
	}
	if endOfDay {
		t = t.AddDate(0, 0, 1)
	}
	return &t, nil
}
