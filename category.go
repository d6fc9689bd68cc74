package catlog

import (
	"errors"
	"fmt"
	"sync"
)

// ErrRootNotSet is returned when the root category is given priority NOTSET.
var ErrRootNotSet = errors.New("catlog: root category priority cannot be NOTSET")

// Category is a named node in a Hierarchy. Each category has a priority,
// zero or more appenders and an additivity flag. Events logged to a category
// are passed to its own appenders and then, while additivity holds, to the
// appenders of each ancestor.
//
// A Category returned by WithContext shares all state with its parent
// category but stamps its events with a diagnostic context.
type Category struct {
	*node
	ndc string
}

type node struct {
	name   string
	parent *Category
	h      *Hierarchy

	mu        sync.RWMutex
	priority  Priority
	appenders []Appender
	additive  bool
}

func newCategory(h *Hierarchy, name string, parent *Category, p Priority) *Category {
	return &Category{
		node: &node{
			name:     name,
			parent:   parent,
			h:        h,
			priority: p,
			additive: true,
		},
	}
}

// Name returns the dotted name of the category. The root has an empty name.
func (c *Category) Name() string {
	return c.name
}

// Parent returns the parent category, or nil for the root.
func (c *Category) Parent() *Category {
	return c.parent
}

// IsRoot reports whether c is the root of its hierarchy.
func (c *Category) IsRoot() bool {
	return c.parent == nil
}

// Priority returns the priority assigned to the category, which may be
// NOTSET.
func (c *Category) Priority() Priority {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.priority
}

// SetPriority assigns a priority to the category. The root category must
// always have a priority, so NOTSET is rejected for it.
func (c *Category) SetPriority(p Priority) error {
	if p >= PriorityNotSet && c.IsRoot() {
		return ErrRootNotSet
	}
	c.mu.Lock()
	c.priority = p
	c.mu.Unlock()
	return nil
}

// ChainedPriority returns the first priority other than NOTSET found walking
// from c towards the root.
func (c *Category) ChainedPriority() Priority {
	for cat := c; cat != nil; cat = cat.parent {
		if p := cat.Priority(); p < PriorityNotSet {
			return p
		}
	}
	return PriorityNotSet
}

// IsPriorityEnabled reports whether an event of priority p logged to c
// would be passed to appenders.
func (c *Category) IsPriorityEnabled(p Priority) bool {
	return p <= c.ChainedPriority()
}

// SetAdditivity controls whether events logged to c are also passed to the
// appenders of its ancestors.
func (c *Category) SetAdditivity(additive bool) {
	c.mu.Lock()
	c.additive = additive
	c.mu.Unlock()
}

// Additivity returns the additivity flag of c.
func (c *Category) Additivity() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.additive
}

// AddAppender binds a to the category. The category holds a reference only;
// the caller keeps ownership of a. Adding the same appender twice has no
// effect.
func (c *Category) AddAppender(a Appender) {
	if a == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, x := range c.appenders {
		if x == a {
			return
		}
	}
	apps := make([]Appender, len(c.appenders), len(c.appenders)+1)
	copy(apps, c.appenders)
	c.appenders = append(apps, a)
}

// RemoveAppender unbinds a from the category without closing it.
func (c *Category) RemoveAppender(a Appender) {
	c.mu.Lock()
	defer c.mu.Unlock()
	apps := make([]Appender, 0, len(c.appenders))
	for _, x := range c.appenders {
		if x != a {
			apps = append(apps, x)
		}
	}
	c.appenders = apps
}

// RemoveAllAppenders unbinds every appender from the category without
// closing any of them.
func (c *Category) RemoveAllAppenders() {
	c.mu.Lock()
	c.appenders = nil
	c.mu.Unlock()
}

// Appenders returns the appenders bound to c, in the order they were added.
func (c *Category) Appenders() []Appender {
	c.mu.RLock()
	defer c.mu.RUnlock()
	apps := make([]Appender, len(c.appenders))
	copy(apps, c.appenders)
	return apps
}

// Appender returns the bound appender with the given name.
func (c *Category) Appender(name string) (Appender, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.appenders {
		if a.Name() == name {
			return a, true
		}
	}
	return nil, false
}

// WithContext returns a context category. The context category is
// identical to its parent, with the exception that the nested diagnostic
// context is set and will appear in log messages (if specified in the
// layout, e.g. %x). Its primary purpose is for situations where a service
// uses a named category for general logging, but also needs to log some
// messages with request related data (e.g. an HTTP correlationID header).
func (c *Category) WithContext(context fmt.Stringer) *Category {
	return &Category{
		node: c.node,
		ndc:  context.String(),
	}
}

func (c *Category) callAppenders(ev *LoggingEvent) {
	for cat := c; cat != nil; cat = cat.parent {
		cat.mu.RLock()
		apps := cat.appenders
		additive := cat.additive
		cat.mu.RUnlock()
		for _, a := range apps {
			a.DoAppend(ev)
		}
		if !additive {
			return
		}
	}
}

// String returns the category name, or "root" for the root category.
func (c *Category) String() string {
	if c.IsRoot() {
		return "root"
	}
	return c.name
}
