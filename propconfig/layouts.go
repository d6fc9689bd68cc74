package propconfig

import (
	"errors"
	"strings"

	"github.com/spaceweasel/catlog"
	"github.com/spaceweasel/catlog/properties"
)

type layoutFactory struct {
	props *properties.Properties
}

// build creates the layout described by appender.<name>.layout and attaches
// it to a.
func (f layoutFactory) build(a catlog.Appender, name string) error {
	prefix := appenderPrefix + name + ".layout"
	tag, ok := f.props.Get(prefix)
	if !ok {
		return failure(ErrMissingLayout, nil, "Missing layout property for appender '%s'", name)
	}
	kind := typeName(strings.TrimSpace(tag))
	build, ok := layoutKind(kind)
	if !ok {
		return failure(ErrUnknownLayoutType, nil, "Unknown layout type '%s' for appender '%s'", kind, name)
	}
	l, err := build(NewProps(f.props, prefix))
	if err != nil {
		if errors.Is(err, ErrInvalidPattern) {
			return failure(ErrInvalidPattern, err, "Invalid conversion pattern for appender '%s'", name)
		}
		return failure(ErrInvalidLayout, err, "Invalid layout for appender '%s'", name)
	}
	a.SetLayout(l)
	return nil
}
