package propconfig

import (
	"errors"
	"fmt"
)

// Failure kinds carried by ConfigureFailure.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrFileNotFound is returned when the configuration file cannot be opened.
	ErrFileNotFound = errors.New("propconfig: file does not exist")

	// ErrLoad is returned when the configuration source cannot be decoded.
	ErrLoad = errors.New("propconfig: unable to load properties")

	// ErrPartialAppender is returned for an appender key with an empty name
	// or an empty property segment.
	ErrPartialAppender = errors.New("propconfig: partial appender definition")

	// ErrAppenderNotDefined is returned when appender.<name> is missing.
	ErrAppenderNotDefined = errors.New("propconfig: appender not defined")

	// ErrUnknownAppenderType is returned when no appender kind is registered
	// for a type tag.
	ErrUnknownAppenderType = errors.New("propconfig: unknown appender type")

	// ErrAppenderCreate is returned when an appender kind fails to build.
	ErrAppenderCreate = errors.New("propconfig: appender could not be created")

	// ErrInvalidThreshold is returned for an unrecognised appender threshold.
	ErrInvalidThreshold = errors.New("propconfig: invalid appender threshold")

	// ErrMissingLayout is returned when an appender requiring a layout has
	// no appender.<name>.layout key.
	ErrMissingLayout = errors.New("propconfig: missing layout property")

	// ErrUnknownLayoutType is returned when no layout kind is registered for
	// a type tag.
	ErrUnknownLayoutType = errors.New("propconfig: unknown layout type")

	// ErrInvalidLayout is returned when a layout kind fails to build.
	ErrInvalidLayout = errors.New("propconfig: invalid layout")

	// ErrInvalidPattern is returned for a conversion pattern that does not
	// parse.
	ErrInvalidPattern = errors.New("propconfig: invalid conversion pattern")

	// ErrCategoryNotFound is returned when a category's key is missing.
	ErrCategoryNotFound = errors.New("propconfig: unable to find category")

	// ErrInvalidCategory is returned when a category value has no comma.
	ErrInvalidCategory = errors.New("propconfig: invalid category configuration")

	// ErrUnknownPriority is returned for an unrecognised category priority.
	ErrUnknownPriority = errors.New("propconfig: unknown priority")

	// ErrAppenderNotFound is returned when a category names an appender that
	// was not instantiated.
	ErrAppenderNotFound = errors.New("propconfig: appender not found")
)

// ConfigureFailure is the single error type returned by a configuration
// pass. Msg is the human readable description, Kind one of the sentinel
// errors above and Err the underlying cause, if any.
//
// Every failure is terminal for the pass that produced it. Unless the
// Configurator was created WithRollback, bindings completed before the
// failure stay in place.
type ConfigureFailure struct {
	Kind error
	Msg  string
	Err  error
}

func failure(kind, cause error, format string, args ...interface{}) *ConfigureFailure {
	return &ConfigureFailure{
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
		Err:  cause,
	}
}

func (e *ConfigureFailure) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ConfigureFailure) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}
