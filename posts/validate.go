package posts

import (
	"errors"
	"fmt"
	"mime/multipart"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"prolific/models"
	"prolific/storage"
)

type CreateInput struct {
	Title    string                `form:"title" validate:"required,min=5"`
	Content  string                `form:"content" validate:"required,min=50"`
	Image    *multipart.FileHeader `form:"-" validate:"-"`
	Progress storage.ProgressFunc  `form:"-" validate:"-"`
}

type UpdateInput struct {
	Title    string                `form:"title" validate:"required,min=5"`
	Content  string                `form:"content" validate:"required,min=50"`
	Status   models.Status         `form:"status" validate:"required,oneof=draft published"`
	Image    *multipart.FileHeader `form:"-" validate:"-"`
	Progress storage.ProgressFunc  `form:"-" validate:"-"`
}

// ValidationError maps a form field to the message shown next to it.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func fieldLabel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToUpper(field[:1]) + field[1:]
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	default:
		return label + " is invalid"
	}
}

// validateStruct runs the struct tags and returns a *ValidationError keyed
// by form field name.
func validateStruct(s any) *ValidationError {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: map[string]string{"form": err.Error()}}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fieldMessage(fe)
		}
	}
	return &ValidationError{Fields: fields}
}

func merge(verr *ValidationError, field, message string) *ValidationError {
	if verr == nil {
		verr = &ValidationError{Fields: map[string]string{}}
	}
	verr.Fields[field] = message
	return verr
}

// imageMessage is the form copy for a rejected cover image.
func imageMessage(err error) string {
	switch {
	case errors.Is(err, storage.ErrImageRequired):
		return "Image is required"
	case errors.Is(err, storage.ErrImageTooLarge):
		return "Max file size is 5MB."
	case errors.Is(err, storage.ErrImageBadFormat):
		return ".jpg, .jpeg, .png and .webp files are accepted."
	default:
		return "Image could not be read"
	}
}

// checkSlug rejects titles that slugify to nothing, which would leave a
// published post without a public URL.
func checkSlug(verr *ValidationError, title string) *ValidationError {
	if verr != nil {
		if _, bad := verr.Fields["title"]; bad {
			return verr
		}
	}
	if Slugify(title) == "" {
		return merge(verr, "title", "Title must contain letters or numbers")
	}
	return verr
}

func (in CreateInput) Validate() error {
	verr := checkSlug(validateStruct(in), in.Title)
	if err := storage.ValidateImage(in.Image); err != nil {
		verr = merge(verr, "image", imageMessage(err))
	}
	if verr != nil {
		return verr
	}
	return nil
}

// Validate checks the form. The image is optional on edit; when present it
// must pass the same checks as on create.
func (in UpdateInput) Validate() error {
	verr := checkSlug(validateStruct(in), in.Title)
	if in.Image != nil {
		if err := storage.ValidateImage(in.Image); err != nil {
			verr = merge(verr, "image", imageMessage(err))
		}
	}
	if verr != nil {
		return verr
	}
	return nil
}
