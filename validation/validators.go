package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	if err := Validate.RegisterValidation("image_ref", validateImageRef); err != nil {
		panic(fmt.Sprintf("failed to register image_ref validator: %v", err))
	}
	if err := Validate.RegisterValidation("background", validateBackground); err != nil {
		panic(fmt.Sprintf("failed to register background validator: %v", err))
	}
}

// MustRegister adds a custom validation tag to the shared instance.
func MustRegister(tag string, fn validator.Func) {
	if err := Validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("failed to register %s validator: %v", tag, err))
	}
}

// OneOf builds a validator accepting exactly the given values.
func OneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

func isHTTPURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsImageRef reports whether s is an image data URL or an http(s) URL.
func IsImageRef(s string) bool {
	return strings.HasPrefix(s, "data:image/") || isHTTPURL(s)
}

// IsBackground reports whether s is usable as an app background: a CSS
// gradient or an image reference.
func IsBackground(s string) bool {
	s = strings.TrimSpace(s)
	return strings.Contains(s, "gradient(") || IsImageRef(s)
}

func validateImageRef(fl validator.FieldLevel) bool {
	return IsImageRef(fl.Field().String())
}

func validateBackground(fl validator.FieldLevel) bool {
	return IsBackground(fl.Field().String())
}

// SanitizeText sanitizes text input by trimming whitespace and removing control characters
func SanitizeText(text string) string {
	text = strings.TrimSpace(text)

	var sanitized strings.Builder
	for _, r := range text {
		if unicode.IsControl(r) && r != '\n' && r != '\t' {
			continue
		}
		sanitized.WriteRune(r)
	}

	return sanitized.String()
}
