package resolver

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Every typed error below matches its sentinel with errors.Is.
var (
	ErrCircularGroupReference   = errors.New("circular group reference")
	ErrDuplicatedParameter      = errors.New("duplicated route parameter")
	ErrMalformedPattern         = errors.New("malformed route pattern")
	ErrMissingPlaceholderDecl   = errors.New("inline placeholder declaration")
	ErrUnknownPlaceholderAlias  = errors.New("unknown placeholder alias")
	ErrInvalidMethodCombination = errors.New("invalid method combination")
	ErrDuplicatedRouteName      = errors.New("duplicated route name")
	ErrDuplicatedRoutePath      = errors.New("duplicated route path")
)

// CircularGroupReferenceError reports a group revisited while walking parents.
type CircularGroupReferenceError struct {
	// Group is the ID of the group that was reached twice
	Group string
}

func (e *CircularGroupReferenceError) Error() string {
	return fmt.Sprintf("%s: group %q", ErrCircularGroupReference, e.Group)
}

func (e *CircularGroupReferenceError) Is(target error) bool {
	return target == ErrCircularGroupReference
}

// DuplicatedParameterError reports placeholder names used more than once in a pattern.
type DuplicatedParameterError struct {
	Pattern string
	Names   []string
}

func (e *DuplicatedParameterError) Error() string {
	return fmt.Sprintf("%s %s in %q", ErrDuplicatedParameter, quoteAll(e.Names), e.Pattern)
}

func (e *DuplicatedParameterError) Is(target error) bool {
	return target == ErrDuplicatedParameter
}

// MalformedPatternError reports a brace without a partner in a composed pattern.
type MalformedPatternError struct {
	Pattern string
	// Offset is the byte offset of the unmatched brace
	Offset int
}

func (e *MalformedPatternError) Error() string {
	return fmt.Sprintf("%s %q: unmatched %q at offset %d", ErrMalformedPattern, e.Pattern, e.Pattern[e.Offset], e.Offset)
}

func (e *MalformedPatternError) Is(target error) bool {
	return target == ErrMalformedPattern
}

// MissingPlaceholderDeclarationError reports inline "{name:regex}" tokens in a
// declared pattern. Expressions belong in the placeholders map.
type MissingPlaceholderDeclarationError struct {
	Pattern string
	Tokens  []string
}

func (e *MissingPlaceholderDeclarationError) Error() string {
	return fmt.Sprintf("%s %s in %q, declare placeholders separately", ErrMissingPlaceholderDecl, quoteAll(e.Tokens), e.Pattern)
}

func (e *MissingPlaceholderDeclarationError) Is(target error) bool {
	return target == ErrMissingPlaceholderDecl
}

// UnknownPlaceholderAliasError reports a placeholder that is neither an alias
// nor a valid expression.
type UnknownPlaceholderAliasError struct {
	Placeholder string
	Err         error
}

func (e *UnknownPlaceholderAliasError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %q: %v", ErrUnknownPlaceholderAlias, e.Placeholder, e.Err)
	}
	return fmt.Sprintf("%s %q", ErrUnknownPlaceholderAlias, e.Placeholder)
}

func (e *UnknownPlaceholderAliasError) Is(target error) bool {
	return target == ErrUnknownPlaceholderAlias
}

func (e *UnknownPlaceholderAliasError) Unwrap() error {
	return e.Err
}

// InvalidMethodCombinationError reports "ANY" mixed with other methods.
type InvalidMethodCombinationError struct {
	Methods []string
}

func (e *InvalidMethodCombinationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidMethodCombination, strings.Join(e.Methods, ", "))
}

func (e *InvalidMethodCombinationError) Is(target error) bool {
	return target == ErrInvalidMethodCombination
}

// DuplicatedRouteNameError lists every route name used more than once.
type DuplicatedRouteNameError struct {
	Names []string
}

func (e *DuplicatedRouteNameError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicatedRouteName, quoteAll(e.Names))
}

func (e *DuplicatedRouteNameError) Is(target error) bool {
	return target == ErrDuplicatedRouteName
}

// DuplicatedRoutePathError lists every "METHOD/path" key used more than once.
type DuplicatedRoutePathError struct {
	Paths []string
}

func (e *DuplicatedRoutePathError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicatedRoutePath, quoteAll(e.Paths))
}

func (e *DuplicatedRoutePathError) Is(target error) bool {
	return target == ErrDuplicatedRoutePath
}

func quoteAll(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}
