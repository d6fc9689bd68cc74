package propconfig

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spaceweasel/catlog"
	"github.com/spaceweasel/catlog/properties"
)

// Configurator applies property based configuration to a catlog.Hierarchy.
// A Configurator is safe for concurrent use; passes are serialized by the
// hierarchy's configuration lock.
type Configurator struct {
	h        *catlog.Hierarchy
	log      *slog.Logger
	rollback bool

	debounce time.Duration
	onReload func(error)

	mu        sync.Mutex
	appenders map[string]catlog.Appender
}

// Option configures a Configurator.
type Option func(*Configurator)

// WithLogger sets the logger used for the configurator's own diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Configurator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRollback makes a failed pass restore every category to the state it
// had before the pass and close the appenders the pass created.
func WithRollback() Option {
	return func(c *Configurator) {
		c.rollback = true
	}
}

// WithDebounce sets how long Watch waits for a file to settle before
// reconfiguring. The default is 100ms.
func WithDebounce(d time.Duration) Option {
	return func(c *Configurator) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithOnReload registers fn to be called after every pass triggered by
// Watch, with the pass result.
func WithOnReload(fn func(error)) Option {
	return func(c *Configurator) {
		c.onReload = fn
	}
}

// New returns a Configurator for h. A nil h selects catlog.DefaultHierarchy.
func New(h *catlog.Hierarchy, opts ...Option) *Configurator {
	if h == nil {
		h = catlog.DefaultHierarchy
	}
	c := &Configurator{
		h:        h,
		log:      slog.Default(),
		debounce: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "propconfig")
	return c
}

// ConfigureFile loads path and configures the hierarchy from it. The format
// follows the file extension: .yaml and .yml are YAML, .toml is TOML and
// anything else is a Java style properties file.
func (c *Configurator) ConfigureFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return failure(ErrFileNotFound, err, "File %s does not exist", path)
	}
	defer f.Close()
	return c.configure(properties.LoaderFor(path), f)
}

// Configure reads a properties document from r and configures the
// hierarchy from it.
func (c *Configurator) Configure(r io.Reader) error {
	return c.configure(properties.Load, r)
}

func (c *Configurator) configure(load properties.Loader, r io.Reader) error {
	props, err := load(r)
	if err != nil {
		return failure(ErrLoad, err, "Unable to load configuration")
	}
	return c.ConfigureProperties(props)
}

// ConfigureProperties configures the hierarchy from an already loaded store:
// every appender block is instantiated, then the root and each category
// listed in the store is bound in turn. The first failure ends the pass.
func (c *Configurator) ConfigureProperties(props *properties.Properties) error {
	return c.h.Reconfigure(func() error {
		var snap snapshot
		if c.rollback {
			snap = takeSnapshot(c.h)
		}
		registry, err := c.pass(props)
		if err != nil {
			c.log.Debug("configuration pass failed", "error", err)
			if c.rollback {
				snap.restore(c.h)
				closeAll(registry, c.log)
				return err
			}
		}
		c.mu.Lock()
		c.appenders = registry
		c.mu.Unlock()
		return err
	})
}

func (c *Configurator) pass(props *properties.Properties) (map[string]catlog.Appender, error) {
	registry, err := newAppenderFactory(props, c.log).instantiateAll()
	if err != nil {
		return registry, err
	}
	b := categoryBinder{props: props, h: c.h, appenders: registry, log: c.log}
	for _, name := range categoryNames(props) {
		if err := b.bind(name); err != nil {
			return registry, err
		}
	}
	return registry, nil
}

// Appenders returns the appenders created by the most recent pass, keyed by
// name. After a failed pass without rollback it holds those built before the
// failure.
func (c *Configurator) Appenders() map[string]catlog.Appender {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := make(map[string]catlog.Appender, len(c.appenders))
	for k, v := range c.appenders {
		m[k] = v
	}
	return m
}

// Close detaches the appenders of the most recent pass from every category
// and closes them.
func (c *Configurator) Close() error {
	return c.h.Reconfigure(func() error {
		c.mu.Lock()
		registry := c.appenders
		c.appenders = nil
		c.mu.Unlock()
		for _, cat := range c.h.Categories() {
			for _, a := range registry {
				cat.RemoveAppender(a)
			}
		}
		return closeAll(registry, c.log)
	})
}

// reload re-runs ConfigureFile and then closes the appenders of the
// previous pass that nothing refers to any more.
func (c *Configurator) reload(path string) error {
	old := c.Appenders()
	err := c.ConfigureFile(path)
	c.release(old)
	return err
}

// release closes the appenders of old that are neither bound to a category
// nor part of the current registry.
func (c *Configurator) release(old map[string]catlog.Appender) {
	_ = c.h.Reconfigure(func() error {
		live := make(map[catlog.Appender]bool)
		for _, cat := range c.h.Categories() {
			for _, a := range cat.Appenders() {
				live[a] = true
			}
		}
		c.mu.Lock()
		for _, a := range c.appenders {
			live[a] = true
		}
		c.mu.Unlock()

		stale := make(map[string]catlog.Appender)
		for name, a := range old {
			if !live[a] {
				stale[name] = a
			}
		}
		if len(stale) > 0 {
			c.log.Debug("releasing superseded appenders", "count", len(stale))
		}
		return closeAll(stale, c.log)
	})
}

func closeAll(registry map[string]catlog.Appender, log *slog.Logger) error {
	var errs []error
	for name, a := range registry {
		if err := a.Close(); err != nil {
			log.Warn("closing appender", "appender", name, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type categoryState struct {
	c         *catlog.Category
	priority  catlog.Priority
	appenders []catlog.Appender
	additive  bool
}

type snapshot struct {
	states []categoryState
	known  map[string]bool
}

func takeSnapshot(h *catlog.Hierarchy) snapshot {
	cats := h.Categories()
	s := snapshot{
		states: make([]categoryState, 0, len(cats)),
		known:  make(map[string]bool, len(cats)),
	}
	for _, c := range cats {
		s.states = append(s.states, categoryState{
			c:         c,
			priority:  c.Priority(),
			appenders: c.Appenders(),
			additive:  c.Additivity(),
		})
		s.known[c.Name()] = true
	}
	return s
}

// restore puts every category recorded in s back in its recorded state.
// Categories created after the snapshot are reset to defaults; a hierarchy
// never forgets a category once created.
func (s snapshot) restore(h *catlog.Hierarchy) {
	for _, st := range s.states {
		st.c.RemoveAllAppenders()
		_ = st.c.SetPriority(st.priority)
		for _, a := range st.appenders {
			st.c.AddAppender(a)
		}
		st.c.SetAdditivity(st.additive)
	}
	for _, c := range h.Categories() {
		if s.known[c.Name()] {
			continue
		}
		c.RemoveAllAppenders()
		_ = c.SetPriority(catlog.PriorityNotSet)
		c.SetAdditivity(true)
	}
}

// ConfigureFile configures catlog.DefaultHierarchy from path.
func ConfigureFile(path string) error {
	return New(nil).ConfigureFile(path)
}

// Configure configures catlog.DefaultHierarchy from a properties document.
func Configure(r io.Reader) error {
	return New(nil).Configure(r)
}
