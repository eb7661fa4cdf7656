// Package apperror carries the three recoverable domain failures the billing
// core reports to callers: NotFound, Forbidden and BusinessRule.
package apperror

import (
	"errors"
	"fmt"
	"sort"
)

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

type ForbiddenError struct {
	Resource string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("%s does not belong to the current user", e.Resource)
}

// BusinessRuleError is a violated domain invariant, keyed by field like a
// validation failure.
type BusinessRuleError struct {
	Messages map[string][]string
}

func (e *BusinessRuleError) Error() string {
	fields := make([]string, 0, len(e.Messages))
	for field := range e.Messages {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		if msgs := e.Messages[field]; len(msgs) > 0 {
			return msgs[0]
		}
	}
	return "business rule violated"
}

// Message returns the first message recorded for field, or "".
func (e *BusinessRuleError) Message(field string) string {
	if msgs := e.Messages[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func Forbidden(resource string) error {
	return &ForbiddenError{Resource: resource}
}

func BusinessRule(field, message string) error {
	return &BusinessRuleError{Messages: map[string][]string{field: {message}}}
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}

func IsBusinessRule(err error) bool {
	var target *BusinessRuleError
	return errors.As(err, &target)
}

// AsBusinessRule unwraps err into a BusinessRuleError when it is one.
func AsBusinessRule(err error) (*BusinessRuleError, bool) {
	var target *BusinessRuleError
	ok := errors.As(err, &target)
	return target, ok
}

// IsDomain reports whether err is one of the recoverable domain failures.
// Anything else is an infrastructure fault.
func IsDomain(err error) bool {
	return IsNotFound(err) || IsForbidden(err) || IsBusinessRule(err)
}
