package properties

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrParse is returned when a source cannot be read or decoded.
var ErrParse = errors.New("properties: parse error")

// Loader reads a whole source into a new store.
type Loader func(r io.Reader) (*Properties, error)

// Load reads .properties text from r into a new store. See
// (*Properties).Load for the syntax.
func Load(r io.Reader) (*Properties, error) {
	p := New()
	if err := p.Load(r); err != nil {
		return nil, err
	}
	return p, nil
}

// Load reads .properties text from r into p.
//
// Each line holds key=value. A '#' starts a comment anywhere on a line.
// Lines without '=' are ignored. Keys and values are trimmed of surrounding
// white space. A leading "log4j.", "log4cpp." or "catlog." is stripped
// from keys. ${name} in a value is replaced by the environment variable
// name or, failing that, by an earlier property of that name, or by
// nothing. The first value read for a key wins: later duplicates, and keys
// already present in p, are left untouched.
func (p *Properties) Load(r io.Reader) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		i := strings.IndexByte(line, '=')
		if i < 0 {
			continue
		}
		key := stripPrefix(strings.TrimSpace(line[:i]))
		if key == "" {
			continue
		}
		p.Add(key, p.substitute(strings.TrimSpace(line[i+1:])))
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrParse, err)
	}
	return nil
}

var keyPrefixes = []string{"log4j", "log4cpp", "catlog"}

func stripPrefix(key string) string {
	i := strings.IndexByte(key, '.')
	if i < 0 {
		return key
	}
	for _, pre := range keyPrefixes {
		if key[:i] == pre {
			return key[i+1:]
		}
	}
	return key
}

// substitute expands ${name} references in value.
func (p *Properties) substitute(value string) string {
	if !strings.Contains(value, "${") {
		return value
	}
	var b strings.Builder
	for {
		start := strings.Index(value, "${")
		if start < 0 {
			b.WriteString(value)
			break
		}
		end := strings.IndexByte(value[start+2:], '}')
		if end < 0 {
			b.WriteString(value)
			break
		}
		b.WriteString(value[:start])
		name := value[start+2 : start+2+end]
		if v, ok := os.LookupEnv(name); ok {
			b.WriteString(v)
		} else if v, ok := p.Get(name); ok {
			b.WriteString(v)
		}
		value = value[start+2+end+1:]
	}
	return b.String()
}

// LoaderFor picks a loader from the file extension of path: .yaml and .yml
// select LoadYAML, .toml selects LoadTOML and anything else Load.
func LoaderFor(path string) Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML
	case ".toml":
		return LoadTOML
	}
	return Load
}

// LoadFile opens path and reads it with the loader chosen by LoaderFor.
func LoadFile(path string) (*Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return LoaderFor(path)(f)
}
