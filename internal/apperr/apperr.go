// Package apperr defines the closed set of error kinds the services return.
//
// Every kind is an oops error code. Handlers switch on Kind to pick an HTTP
// status; anything that is not one of these codes is treated as internal.
package apperr

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/oops"
)

// Error kinds.
const (
	CodeValidation   = "VALIDATION"
	CodeNotFound     = "NOT_FOUND"
	CodeAuth         = "AUTH"
	CodeDuplicateKey = "DUPLICATE_KEY"
	CodeInternal     = "INTERNAL"
)

const (
	fieldsKey  = "fields"
	messageKey = "message"
)

// Fields maps a request field to its validation messages.
type Fields map[string][]string

// Add appends msg to the messages of field.
func (f Fields) Add(field, msg string) {
	f[field] = append(f[field], msg)
}

// Names returns the field names in sorted order.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for k := range f {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validation reports a single invalid field.
func Validation(field, msg string) error {
	return ValidationFields(Fields{field: {msg}})
}

// ValidationFields reports one or more invalid fields at once.
// It returns nil when f is empty.
func ValidationFields(f Fields) error {
	if len(f) == 0 {
		return nil
	}
	msg := "invalid input: " + strings.Join(f.Names(), ", ")
	if len(f) == 1 {
		for _, msgs := range f {
			if len(msgs) == 1 {
				msg = msgs[0]
			}
		}
	}
	return oops.Code(CodeValidation).
		With(fieldsKey, f).
		With(messageKey, msg).
		Errorf("%s", msg)
}

// NotFound reports a referenced entity that does not exist.
func NotFound(msg string) error {
	return oops.Code(CodeNotFound).With(messageKey, msg).Errorf("%s", msg)
}

// Auth reports bad credentials or an unusable account or token.
func Auth(msg string) error {
	return oops.Code(CodeAuth).With(messageKey, msg).Errorf("%s", msg)
}

// Duplicate reports a store-level uniqueness violation on field.
func Duplicate(field string, cause error) error {
	msg := fmt.Sprintf("%s already exists", field)
	b := oops.Code(CodeDuplicateKey).
		With("field", field).
		With(fieldsKey, Fields{field: {msg}}).
		With(messageKey, msg)
	if cause == nil {
		return b.Errorf("%s", msg)
	}
	return b.Wrapf(cause, "%s", msg)
}

// Internal wraps an unexpected fault. Errors that already carry a kind are
// returned unchanged so their kind is not masked.
func Internal(op string, err error) error {
	if err == nil {
		return nil
	}
	if Kind(err) != CodeInternal {
		return err
	}
	if _, ok := oops.AsOops(err); ok {
		return err
	}
	return oops.Code(CodeInternal).With("operation", op).Wrap(err)
}

// Kind returns the error kind of err. Errors without a known code are
// internal; nil has no kind.
func Kind(err error) string {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return CodeInternal
	}
	switch code := fmt.Sprint(oopsErr.Code()); code {
	case CodeValidation, CodeNotFound, CodeAuth, CodeDuplicateKey:
		return code
	default:
		return CodeInternal
	}
}

// Is reports whether err has the given kind.
func Is(err error, code string) bool {
	return err != nil && Kind(err) == code
}

// FieldErrors returns the per-field messages attached to a validation or
// duplicate-key error.
func FieldErrors(err error) Fields {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	f, _ := oopsErr.Context()[fieldsKey].(Fields)
	return f
}

// Message returns the client-facing message of a kinded error. Internal
// errors get a generic message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	if Kind(err) == CodeInternal {
		return "internal error"
	}
	oopsErr, _ := oops.AsOops(err)
	if msg, ok := oopsErr.Context()[messageKey].(string); ok && msg != "" {
		return msg
	}
	return err.Error()
}
