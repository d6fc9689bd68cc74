package propconfig

import (
	"log/slog"
	"strings"

	"github.com/spaceweasel/catlog"
	"github.com/spaceweasel/catlog/properties"
)

const (
	rootCategoryKey  = "rootCategory"
	categoryPrefix   = "category."
	additivityPrefix = "additivity."
)

// categoryNames lists the categories a store configures: the root first,
// then, in key order, the text following "category." in every key that
// contains it.
func categoryNames(props *properties.Properties) []string {
	names := []string{rootCategoryKey}
	for _, key := range props.Keys() {
		if i := strings.Index(key, categoryPrefix); i >= 0 {
			names = append(names, key[i+len(categoryPrefix):])
		}
	}
	return names
}

// categoryBinder applies category lines to a hierarchy using the appenders
// of one configuration pass.
type categoryBinder struct {
	props     *properties.Properties
	h         *catlog.Hierarchy
	appenders map[string]catlog.Appender
	log       *slog.Logger
}

func (b categoryBinder) bind(name string) error {
	key := rootCategoryKey
	if name != rootCategoryKey {
		key = categoryPrefix + name
	}
	value, ok := b.props.Get(key)
	if !ok {
		return failure(ErrCategoryNotFound, nil, "Unable to find category: %s", key)
	}

	var c *catlog.Category
	if name == rootCategoryKey {
		c = b.h.Root()
	} else {
		c = b.h.GetInstance(name)
	}

	if !strings.Contains(value, ",") {
		return failure(ErrInvalidCategory, nil, "Invalid configuration file: see %s", key)
	}
	fields := strings.Split(value, ",")
	prio := strings.TrimSpace(fields[0])
	var items []string
	for _, item := range fields[1:] {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}

	c.RemoveAllAppenders()

	p, err := catlog.ParsePriority(prio)
	if err == nil {
		err = c.SetPriority(p)
	}
	if err != nil {
		return failure(ErrUnknownPriority, err, "unknown priority '%s' for category '%s'", prio, name)
	}

	for _, an := range items {
		a, ok := b.appenders[an]
		if !ok {
			return failure(ErrAppenderNotFound, nil, "Appender '%s' not found for category '%s'", an, name)
		}
		c.AddAppender(a)
	}

	if !c.IsRoot() {
		c.SetAdditivity(b.props.GetBool(additivityPrefix+name, true))
	}

	b.log.Debug("category bound", "category", c.String(), "priority", p.String(), "appenders", len(items))
	return nil
}
