package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"safarsathi-service/internal/domain/repository"
	"safarsathi-service/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	errInvalidBody       = apperror.Validation("invalid_body", "Request body could not be parsed.")
	errUnsupportedFormat = apperror.Validation("unsupported_format", "File format not supported.")
)

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/webp": true,
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form", "query"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// bind parses the body into out and validates it
func (h *Handler) bind(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return errInvalidBody.Wrap(err)
	}
	return h.check(out)
}

// check validates out and reports the first failing field
func (h *Handler) check(out interface{}) error {
	err := h.validate.Struct(out)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperror.Validation("invalid_request", "Invalid request.").Wrap(err)
	}
	fe := fieldErrs[0]
	field := strings.SplitN(fe.Field(), "[", 2)[0]

	var message string
	switch fe.Tag() {
	case "required":
		message = fmt.Sprintf("%s is required.", field)
	case "email":
		message = "Please provide a valid email."
	case "len":
		message = fmt.Sprintf("%s must contain exactly %s characters.", field, fe.Param())
	case "min":
		message = fmt.Sprintf("%s must contain at least %s characters or items.", field, fe.Param())
	case "oneof":
		message = fmt.Sprintf("%s must be one of: %s.", field, fe.Param())
	default:
		message = fmt.Sprintf("%s is invalid.", field)
	}
	return apperror.Validation("invalid_"+field, message)
}

// formImage reads an optional image upload. The returned close function
// must be called once the image has been stored.
func formImage(c *fiber.Ctx, field string) (*repository.Image, func(), error) {
	noop := func() {}

	fh, err := c.FormFile(field)
	if err != nil {
		// missing file; callers decide whether the image is required
		return nil, noop, nil
	}

	contentType := fh.Header.Get(fiber.HeaderContentType)
	if !allowedImageTypes[contentType] {
		return nil, noop, errUnsupportedFormat
	}

	file, err := fh.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("failed to open upload: %w", err)
	}

	return &repository.Image{
		Filename:    fh.Filename,
		ContentType: contentType,
		Size:        fh.Size,
		Content:     file,
	}, func() { file.Close() }, nil
}

// formFloat parses an optional numeric form value
func formFloat(value string) (*float64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Date accepts RFC 3339 timestamps and plain yyyy-mm-dd dates
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date %q", s)
}

func dates(in []Date) []time.Time {
	out := make([]time.Time, 0, len(in))
	for _, d := range in {
		out = append(out, d.Time)
	}
	return out
}

// commaList splits a comma separated query or form value
func commaList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// stringList accepts a JSON array of strings or one comma separated string
type stringList []string

func (l *stringList) UnmarshalJSON(b []byte) error {
	var items []string
	if err := json.Unmarshal(b, &items); err == nil {
		*l = items
		return nil
	}
	var joined string
	if err := json.Unmarshal(b, &joined); err != nil {
		return err
	}
	*l = commaList(joined)
	return nil
}
