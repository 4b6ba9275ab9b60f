package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MessageProvider lets a form override the default message per field
type MessageProvider interface {
	ValidationMessages() map[string]string
}

// ValidationError is a client-side form rejection. It never reaches the network.
type ValidationError struct {
	Fields map[string]string // field (wire name) -> message
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err is (or wraps) a ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

var (
	kisAccountPattern = regexp.MustCompile(`^\d{8}-\d{2}$`)
	indexSuffix       = regexp.MustCompile(`\[\d+\]$`)
	validate          = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "mapstructure"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})
	_ = v.RegisterValidation("kis_account", func(fl validator.FieldLevel) bool {
		return kisAccountPattern.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks a form against its validate tags and returns a
// *ValidationError with one message per failing field.
func Validate(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}

	var overrides map[string]string
	if mp, ok := form.(MessageProvider); ok {
		overrides = mp.ValidationMessages()
	}

	out := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		field := indexSuffix.ReplaceAllString(fe.Field(), "")
		if _, seen := out.Fields[field]; seen {
			continue
		}
		if msg, ok := overrides[field]; ok {
			out.Fields[field] = msg
			continue
		}
		out.Fields[field] = defaultMessage(fe)
	}
	return out
}

func defaultMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "필수 입력 항목입니다"
	case "email":
		return "유효한 이메일을 입력해주세요"
	case "min", "gte":
		return fmt.Sprintf("%s 이상이어야 합니다", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s 이하여야 합니다", fe.Param())
	case "gt":
		return fmt.Sprintf("%s보다 커야 합니다", fe.Param())
	case "lt":
		return fmt.Sprintf("%s보다 작아야 합니다", fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s보다 커야 합니다", fe.Param())
	case "ltfield":
		return fmt.Sprintf("%s보다 작아야 합니다", fe.Param())
	case "oneof":
		return "다음 중 하나여야 합니다: " + fe.Param()
	case "kis_account":
		return "계좌번호 형식: 12345678-01"
	}
	return "유효하지 않은 값입니다"
}

func mergeValidation(dst *ValidationError, prefix string, err error) error {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	for k, v := range ve.Fields {
		dst.Fields[prefix+k] = v
	}
	return nil
}
