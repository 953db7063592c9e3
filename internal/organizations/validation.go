package organizations

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// DefaultMaxLogoKB is the logo size ceiling in kilobytes.
const DefaultMaxLogoKB = 2048

// imageTypes are the MIME types accepted for a logo.
var imageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/bmp",
	"image/webp",
	"image/svg+xml",
}

// Upload is a file submitted with a form. Content is rewound after sniffing.
type Upload struct {
	Filename string
	Size     int64
	Content  io.ReadSeeker
}

// CreateOrganizationInput lists exactly the fields a user may set when
// creating an organization.
type CreateOrganizationInput struct {
	Name         string  `form:"name" validate:"required,max=255"`
	PrimaryColor *string `form:"primary_color" validate:"omitempty"`
	Logo         *Upload `form:"logo" validate:"-"`
}

// Old returns the submitted text fields for redisplaying a rejected form.
// File inputs cannot be repopulated and are left out.
func (in CreateOrganizationInput) Old() map[string]string {
	old := map[string]string{"name": in.Name}
	if in.PrimaryColor != nil {
		old["primary_color"] = *in.PrimaryColor
	}
	return old
}

// ValidationError maps form field names to human-readable messages.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, strings.Join(e.Fields[k], " "))
	}
	return "validation failed: " + strings.Join(parts, " ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], msg)
}

// IsValidationError reports whether err carries field errors.
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

type inputValidator struct {
	validate  *validator.Validate
	maxLogoKB int64
}

func newInputValidator(maxLogoKB int64) *inputValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if maxLogoKB <= 0 {
		maxLogoKB = DefaultMaxLogoKB
	}
	return &inputValidator{validate: v, maxLogoKB: maxLogoKB}
}

// normalize trims text fields and turns an empty color into "not given".
func normalize(in *CreateOrganizationInput) {
	in.Name = strings.TrimSpace(in.Name)
	if in.PrimaryColor != nil {
		c := strings.TrimSpace(*in.PrimaryColor)
		if c == "" {
			in.PrimaryColor = nil
		} else {
			in.PrimaryColor = &c
		}
	}
}

// check validates in and, for a logo, returns its sniffed MIME type.
func (v *inputValidator) check(in CreateOrganizationInput) (*mimetype.MIME, error) {
	verr := &ValidationError{}
	if err := v.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("validate input: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.add(fe.Field(), message(fe))
		}
	}
	// PostgreSQL text rejects NUL and invalid UTF-8.
	if !utf8.ValidString(in.Name) || strings.ContainsRune(in.Name, 0) {
		verr.add("name", "The name field is invalid.")
	}

	var mtype *mimetype.MIME
	if in.Logo != nil {
		var err error
		mtype, err = v.checkLogo(in.Logo, verr)
		if err != nil {
			return nil, err
		}
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return mtype, nil
}

func (v *inputValidator) checkLogo(logo *Upload, verr *ValidationError) (*mimetype.MIME, error) {
	if logo.Content == nil {
		verr.add("logo", "The logo failed to upload.")
		return nil, nil
	}
	mtype, err := mimetype.DetectReader(logo.Content)
	if err != nil {
		return nil, fmt.Errorf("read logo: %w", err)
	}
	if _, err := logo.Content.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind logo: %w", err)
	}
	if !isImage(mtype) {
		verr.add("logo", "The logo field must be an image.")
	}
	if logo.Size > v.maxLogoKB*1024 {
		verr.add("logo", fmt.Sprintf("The logo field must not be greater than %d kilobytes.", v.maxLogoKB))
	}
	return mtype, nil
}

func isImage(m *mimetype.MIME) bool {
	for _, t := range imageTypes {
		if m.Is(t) {
			return true
		}
	}
	return false
}

func message(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, fe.Param())
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}
