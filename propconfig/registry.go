package propconfig

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spaceweasel/catlog"
	"github.com/spaceweasel/catlog/properties"
)

// AppenderBuilder creates an appender of one kind. props reads the
// appender's sub-properties, appender.<name>.<prop>. Builders must fall back
// to defaults for missing properties rather than fail.
type AppenderBuilder func(name string, props Props) (catlog.Appender, error)

// LayoutBuilder creates a layout of one kind. props reads
// appender.<name>.layout.<prop>.
type LayoutBuilder func(props Props) (catlog.Layout, error)

var (
	kindsMu       sync.RWMutex
	appenderKinds = make(map[string]AppenderBuilder)
	layoutKinds   = make(map[string]LayoutBuilder)
)

// RegisterAppender makes an appender kind available under typeName, the
// last dot separated segment of an appender.<name> value.
// If RegisterAppender is called twice with the same name or if b is nil,
// it panics.
func RegisterAppender(typeName string, b AppenderBuilder) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	if b == nil {
		panic("propconfig: RegisterAppender builder is nil")
	}
	if _, dup := appenderKinds[typeName]; dup {
		panic("propconfig: RegisterAppender called twice for " + typeName)
	}
	appenderKinds[typeName] = b
}

// RegisterLayout makes a layout kind available under typeName.
// If RegisterLayout is called twice with the same name or if b is nil,
// it panics.
func RegisterLayout(typeName string, b LayoutBuilder) {
	kindsMu.Lock()
	defer kindsMu.Unlock()
	if b == nil {
		panic("propconfig: RegisterLayout builder is nil")
	}
	if _, dup := layoutKinds[typeName]; dup {
		panic("propconfig: RegisterLayout called twice for " + typeName)
	}
	layoutKinds[typeName] = b
}

func appenderKind(typeName string) (AppenderBuilder, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	b, ok := appenderKinds[typeName]
	return b, ok
}

func layoutKind(typeName string) (LayoutBuilder, bool) {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	b, ok := layoutKinds[typeName]
	return b, ok
}

// AppenderTypes returns the registered appender type names, sorted.
func AppenderTypes() []string {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	return sortedKeys(appenderKinds)
}

// LayoutTypes returns the registered layout type names, sorted.
func LayoutTypes() []string {
	kindsMu.RLock()
	defer kindsMu.RUnlock()
	return sortedKeys(layoutKinds)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// typeName returns the last dot separated segment of a type tag, so
// "org.foo.ConsoleAppender" and "ConsoleAppender" are equivalent.
func typeName(tag string) string {
	if i := strings.LastIndex(tag, "."); i >= 0 {
		return tag[i+1:]
	}
	return tag
}

// Props is a view of the property store scoped to one key prefix.
type Props struct {
	store  *properties.Properties
	prefix string
}

// NewProps returns a view of store reading keys below prefix.
func NewProps(store *properties.Properties, prefix string) Props {
	return Props{store: store, prefix: prefix}
}

// Prefix returns the key prefix of the view, e.g. "appender.A".
func (p Props) Prefix() string {
	return p.prefix
}

func (p Props) key(prop string) string {
	return p.prefix + "." + prop
}

// Lookup returns the raw value of prop.
func (p Props) Lookup(prop string) (string, bool) {
	return p.store.Get(p.key(prop))
}

// String returns prop or def if absent.
func (p Props) String(prop, def string) string {
	return p.store.GetString(p.key(prop), def)
}

// Int returns prop as a decimal integer, or def if absent or malformed.
func (p Props) Int(prop string, def int) int {
	return p.store.GetInt(p.key(prop), def)
}

// Bool returns prop as a boolean, or def if absent or malformed.
func (p Props) Bool(prop string, def bool) bool {
	return p.store.GetBool(p.key(prop), def)
}

// Octal returns prop parsed as an octal number, such as a file mode, or def
// if absent or malformed.
func (p Props) Octal(prop string, def uint32) uint32 {
	v, ok := p.Lookup(prop)
	if !ok {
		return def
	}
	n, err := strconv.ParseUint(strings.TrimSpace(v), 8, 32)
	if err != nil {
		return def
	}
	return uint32(n)
}

// Duration returns prop as a time.Duration. Values are parsed with
// time.ParseDuration; a bare integer is taken as milliseconds. def is
// returned if the property is absent or malformed.
func (p Props) Duration(prop string, def time.Duration) time.Duration {
	v, ok := p.Lookup(prop)
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
