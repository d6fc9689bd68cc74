package properties

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ValueKey names the entry that holds a node's own value in a nested
// document when the node also has children:
//
//	appender:
//	  A:
//	    _: ConsoleAppender
//	    layout: SimpleLayout
//
// flattens to appender.A=ConsoleAppender and
// appender.A.layout=SimpleLayout.
const ValueKey = "_"

// LoadYAML reads a YAML mapping from r and flattens it into a new store.
// Nested mappings join their keys with '.', sequences become a comma
// separated list and scalars their string form. Key prefixes, ${name}
// substitution and first-wins apply as for Load.
func LoadYAML(r io.Reader) (*Properties, error) {
	var doc map[string]interface{}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return New(), nil
		}
		return nil, fmt.Errorf("%w: yaml: %w", ErrParse, err)
	}
	p := New()
	p.flatten("", doc)
	return p, nil
}

// LoadTOML reads a TOML document from r and flattens it like LoadYAML.
// Quoted dotted keys ("appender.A" = "ConsoleAppender") are taken as is.
func LoadTOML(r io.Reader) (*Properties, error) {
	var doc map[string]interface{}
	if err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: toml: %w", ErrParse, err)
	}
	p := New()
	p.flatten("", doc)
	return p, nil
}

func join(prefix, key string) string {
	switch {
	case key == ValueKey:
		return prefix
	case prefix == "":
		return key
	}
	return prefix + "." + key
}

func (p *Properties) flatten(prefix string, v interface{}) {
	switch t := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			p.flatten(join(prefix, k), t[k])
		}
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, x := range t {
			m[fmt.Sprint(k)] = x
		}
		p.flatten(prefix, m)
	default:
		key := stripPrefix(prefix)
		if key == "" {
			return
		}
		p.Add(key, p.substitute(scalar(v)))
	}
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []interface{}:
		items := make([]string, len(t))
		for i, x := range t {
			items[i] = scalar(x)
		}
		return strings.Join(items, ", ")
	}
	return fmt.Sprint(v)
}
