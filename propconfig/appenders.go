package propconfig

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/spaceweasel/catlog"
	"github.com/spaceweasel/catlog/properties"
)

const appenderPrefix = "appender."

// appenderFactory builds every appender block of a store.
type appenderFactory struct {
	props   *properties.Properties
	layouts layoutFactory
	log     *slog.Logger
}

func newAppenderFactory(props *properties.Properties, log *slog.Logger) appenderFactory {
	return appenderFactory{
		props:   props,
		layouts: layoutFactory{props: props},
		log:     log,
	}
}

// index groups the appender.* keys by appender name. Key order in the store
// does not matter.
func (f appenderFactory) index() ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	var bad error
	f.props.Range(appenderPrefix, func(key, _ string) bool {
		rest := key[len(appenderPrefix):]
		name, prop, hasProp := strings.Cut(rest, ".")
		if name == "" || (hasProp && strings.Contains("."+prop+".", "..")) {
			bad = failure(ErrPartialAppender, nil, "partial appender definition : %s", key)
			return false
		}
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
		return true
	})
	if bad != nil {
		return nil, bad
	}
	sort.Strings(names)
	return names, nil
}

// instantiateAll builds every indexed appender. On failure the appenders
// built so far are returned alongside the error.
func (f appenderFactory) instantiateAll() (map[string]catlog.Appender, error) {
	registry := make(map[string]catlog.Appender)
	names, err := f.index()
	if err != nil {
		return registry, err
	}
	for _, name := range names {
		a, err := f.instantiate(name)
		if err != nil {
			return registry, err
		}
		registry[name] = a
	}
	return registry, nil
}

func (f appenderFactory) instantiate(name string) (catlog.Appender, error) {
	prefix := appenderPrefix + name
	tag, ok := f.props.Get(prefix)
	if !ok {
		return nil, failure(ErrAppenderNotDefined, nil, "Appender '%s' not defined", name)
	}
	kind := typeName(strings.TrimSpace(tag))
	build, ok := appenderKind(kind)
	if !ok {
		return nil, failure(ErrUnknownAppenderType, nil, "Appender '%s' has unknown type '%s'", name, kind)
	}

	props := NewProps(f.props, prefix)
	a, err := build(name, props)
	if err != nil {
		return nil, failure(ErrAppenderCreate, err, "Appender '%s' could not be created", name)
	}

	if v, ok := props.Lookup("threshold"); ok {
		p, err := catlog.ParsePriority(v)
		if err != nil {
			f.discard(a)
			return nil, failure(ErrInvalidThreshold, err,
				"Invalid threshold '%s' for appender '%s'", v, name)
		}
		a.SetThreshold(p)
	}

	_, hasLayout := props.Lookup("layout")
	if a.RequiresLayout() && (hasLayout || !layoutOptional[kind]) {
		if err := f.layouts.build(a, name); err != nil {
			f.discard(a)
			return nil, err
		}
	}

	f.log.Debug("appender instantiated", "appender", name, "type", kind)
	return a, nil
}

// discard closes an appender that failed to configure.
func (f appenderFactory) discard(a catlog.Appender) {
	if err := a.Close(); err != nil {
		f.log.Warn("closing discarded appender", "appender", a.Name(), "error", err)
	}
}
