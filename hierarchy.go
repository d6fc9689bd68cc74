package catlog

import (
	"errors"
	"sort"
	"strings"
	"sync"
)

// Hierarchy owns a tree of categories addressed by dotted names. The root
// category has the empty name and is never removed.
//
// A Hierarchy separates configuration from logging: Reconfigure holds a
// write lock for the duration of a configuration pass, and every logging
// call on a category of the hierarchy holds the matching read lock, so a
// logging goroutine never observes a category halfway through being rebound.
type Hierarchy struct {
	pass sync.RWMutex

	mu         sync.Mutex
	root       *Category
	categories map[string]*Category
}

// NewHierarchy returns a hierarchy containing only a root category with
// priority INFO.
func NewHierarchy() *Hierarchy {
	h := &Hierarchy{
		categories: make(map[string]*Category),
	}
	h.root = newCategory(h, "", nil, PriorityInfo)
	return h
}

// DefaultHierarchy is the process-wide hierarchy used by the package level
// helpers.
var DefaultHierarchy = NewHierarchy()

// Root returns the root category.
func (h *Hierarchy) Root() *Category {
	return h.root
}

// GetInstance returns the category with the given dotted name, creating it
// and any missing ancestors. New categories have priority NOTSET and inherit
// the priority of the nearest ancestor that has one. The empty name denotes
// the root.
func (h *Hierarchy) GetInstance(name string) *Category {
	if name == "" {
		return h.root
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.getInstance(name)
}

func (h *Hierarchy) getInstance(name string) *Category {
	if c, ok := h.categories[name]; ok {
		return c
	}
	parent := h.root
	if i := strings.LastIndex(name, "."); i > 0 {
		parent = h.getInstance(name[:i])
	}
	c := newCategory(h, name, parent, PriorityNotSet)
	h.categories[name] = c
	return c
}

// Exists returns the named category if it has been created.
func (h *Hierarchy) Exists(name string) (*Category, bool) {
	if name == "" {
		return h.root, true
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.categories[name]
	return c, ok
}

// Categories returns the root followed by every other category in name order.
func (h *Hierarchy) Categories() []*Category {
	h.mu.Lock()
	names := make([]string, 0, len(h.categories))
	for n := range h.categories {
		names = append(names, n)
	}
	sort.Strings(names)
	cats := make([]*Category, 0, len(names)+1)
	cats = append(cats, h.root)
	for _, n := range names {
		cats = append(cats, h.categories[n])
	}
	h.mu.Unlock()
	return cats
}

// Reconfigure runs fn while holding the hierarchy's configuration lock.
// Logging calls on categories of h block until fn returns.
func (h *Hierarchy) Reconfigure(fn func() error) error {
	h.pass.Lock()
	defer h.pass.Unlock()
	return fn()
}

// Shutdown detaches every appender from every category and closes each
// distinct appender once. It is important that Shutdown is called before
// exiting an application to ensure that any buffered data is written.
func (h *Hierarchy) Shutdown() error {
	h.pass.Lock()
	defer h.pass.Unlock()
	seen := make(map[Appender]bool)
	var errs []error
	for _, c := range h.Categories() {
		for _, a := range c.Appenders() {
			if seen[a] {
				continue
			}
			seen[a] = true
			if err := a.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		c.RemoveAllAppenders()
	}
	return errors.Join(errs...)
}

// Root returns the root category of DefaultHierarchy.
func Root() *Category {
	return DefaultHierarchy.Root()
}

// GetInstance returns the named category of DefaultHierarchy, creating it
// if necessary.
func GetInstance(name string) *Category {
	return DefaultHierarchy.GetInstance(name)
}

// Shutdown closes every appender bound in DefaultHierarchy.
func Shutdown() error {
	return DefaultHierarchy.Shutdown()
}
