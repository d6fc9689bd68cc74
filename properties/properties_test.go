package properties

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestSetKeepsKeysSorted(t *testing.T) {
	p := New()
	for _, k := range []string{"b", "a.x", "c", "a"} {
		p.Set(k, k+"-value")
	}
	p.Set("a", "replaced")

	want := []string{"a", "a.x", "b", "c"}
	if got := p.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("Keys got %q, want %q", got, want)
	}
	if got, _ := p.Get("a"); got != "replaced" {
		t.Errorf("Get(a) got %q, want %q", got, "replaced")
	}
	if got := p.Len(); got != 4 {
		t.Errorf("Len got %d, want 4", got)
	}
}

func TestZeroValueIsUsable(t *testing.T) {
	var p Properties
	if _, ok := p.Get("x"); ok {
		t.Error("Get on empty store got ok")
	}
	p.Set("x", "1")
	if got := p.GetInt("x", 0); got != 1 {
		t.Errorf("GetInt got %d, want 1", got)
	}
}

func TestAddFirstWins(t *testing.T) {
	p := New()
	if !p.Add("k", "first") {
		t.Error("Add of new key got false")
	}
	if p.Add("k", "second") {
		t.Error("Add of existing key got true")
	}
	if got, _ := p.Get("k"); got != "first" {
		t.Errorf("Get got %q, want %q", got, "first")
	}
}

func TestDelete(t *testing.T) {
	p := New()
	p.Set("a", "1")
	p.Set("b", "2")
	p.Delete("zz")
	p.Delete("a")
	if got := p.Keys(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("Keys got %q, want [b]", got)
	}
}

func TestTypedGetters(t *testing.T) {
	p := New()
	p.Set("n", " 42 ")
	p.Set("bad", "4x")
	p.Set("yes", "Yes")
	p.Set("off", "OFF")
	p.Set("t", "true")
	p.Set("junk", "maybe")

	var tests = []struct {
		property string
		got      interface{}
		want     interface{}
	}{
		{"GetInt(n)", p.GetInt("n", 7), 42},
		{"GetInt(bad)", p.GetInt("bad", 7), 7},
		{"GetInt(missing)", p.GetInt("missing", 7), 7},
		{"GetBool(yes)", p.GetBool("yes", false), true},
		{"GetBool(off)", p.GetBool("off", true), false},
		{"GetBool(t)", p.GetBool("t", false), true},
		{"GetBool(junk)", p.GetBool("junk", true), true},
		{"GetString(missing)", p.GetString("missing", "def"), "def"},
		{"GetString(n)", p.GetString("n", "def"), " 42 "},
	}
	for _, test := range tests {
		if test.got != test.want {
			t.Errorf("%s got %v, want %v", test.property, test.got, test.want)
		}
	}
}

func TestRangeVisitsPrefixOnly(t *testing.T) {
	p := New()
	for _, k := range []string{"appender.A", "appender.A.layout", "appender.B", "appenderX", "category.a", "additivity.a"} {
		p.Set(k, "")
	}
	var got []string
	p.Range("appender.", func(k, _ string) bool {
		got = append(got, k)
		return true
	})
	want := []string{"appender.A", "appender.A.layout", "appender.B"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Range got %q, want %q", got, want)
	}

	got = nil
	p.Range("appender.", func(k, _ string) bool {
		got = append(got, k)
		return false
	})
	if len(got) != 1 {
		t.Errorf("Range after false got %d keys, want 1", len(got))
	}
}

func TestClone(t *testing.T) {
	p := New()
	p.Set("a", "1")
	c := p.Clone()
	c.Set("b", "2")
	c.Set("a", "changed")
	if got, _ := p.Get("a"); got != "1" {
		t.Errorf("original Get(a) got %q, want %q", got, "1")
	}
	if p.Len() != 1 {
		t.Errorf("original Len got %d, want 1", p.Len())
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("CATLOG_TEST_DIR", "/var/log/app")
	src := `
# a comment
log4j.rootCategory = DEBUG, A   # trailing comment
log4cpp.appender.A=ConsoleAppender
catlog.appender.F.fileName=${CATLOG_TEST_DIR}/app.log
appender.F.backup=${appender.F.fileName}.bak
appender.F.missing=[${NO_SUCH_VARIABLE_ANYWHERE}]
appender.F.open=${unterminated
line without equals sign
 = no key
appender.A=FileAppender
category.x=INFO,
`
	p, err := Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load got error %v", err)
	}

	var tests = []struct {
		key  string
		want string
	}{
		{"rootCategory", "DEBUG, A"},
		{"appender.A", "ConsoleAppender"},
		{"appender.F.fileName", "/var/log/app/app.log"},
		{"appender.F.backup", "/var/log/app/app.log.bak"},
		{"appender.F.missing", "[]"},
		{"appender.F.open", "${unterminated"},
		{"category.x", "INFO,"},
	}
	for _, test := range tests {
		got, ok := p.Get(test.key)
		if !ok {
			t.Errorf("%s missing", test.key)
			continue
		}
		if got != test.want {
			t.Errorf("%s got %q, want %q", test.key, got, test.want)
		}
	}
	if got := p.Len(); got != len(tests) {
		t.Errorf("Len got %d, want %d: %q", got, len(tests), p.Keys())
	}
}

func TestLoadKeepsUnknownPrefixes(t *testing.T) {
	p, err := Load(strings.NewReader("myapp.category.x=INFO, A\nlog4j=bare\n"))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.Get("myapp.category.x"); !ok {
		t.Errorf("Keys got %q, want myapp.category.x kept", p.Keys())
	}
	if _, ok := p.Get("log4j"); !ok {
		t.Errorf("Keys got %q, want bare log4j key kept", p.Keys())
	}
}

const yamlSource = `
log4j:
  rootCategory: WARN, A, F
category:
  app.db: DEBUG, F
additivity:
  app.db: false
appender:
  A:
    _: ConsoleAppender
    layout:
      _: PatternLayout
      ConversionPattern: "%p %m%n"
  F:
    _: org.apache.log4j.FileAppender
    fileName: ${HOME_FOR_TEST}/app.log
    append: true
    maxBackupIndex: 3
    tags: [a, b]
`

const tomlSource = `
rootCategory = "WARN, A, F"
"category.app.db" = "DEBUG, F"

[additivity]
"app.db" = false

[appender.A]
_ = "ConsoleAppender"
layout = { _ = "PatternLayout", ConversionPattern = "%p %m%n" }

[appender.F]
_ = "org.apache.log4j.FileAppender"
fileName = "${HOME_FOR_TEST}/app.log"
append = true
maxBackupIndex = 3
tags = ["a", "b"]
`

const propertiesSource = `
rootCategory=WARN, A, F
category.app.db=DEBUG, F
additivity.app.db=false
appender.A=ConsoleAppender
appender.A.layout=PatternLayout
appender.A.layout.ConversionPattern=%p %m%n
appender.F=org.apache.log4j.FileAppender
appender.F.fileName=${HOME_FOR_TEST}/app.log
appender.F.append=true
appender.F.maxBackupIndex=3
appender.F.tags=a, b
`

func TestTreeLoadersMatchProperties(t *testing.T) {
	t.Setenv("HOME_FOR_TEST", "/home/test")
	want, err := Load(strings.NewReader(propertiesSource))
	if err != nil {
		t.Fatal(err)
	}

	var tests = []struct {
		name string
		load Loader
		src  string
	}{
		{"yaml", LoadYAML, yamlSource},
		{"toml", LoadTOML, tomlSource},
	}
	for _, test := range tests {
		got, err := test.load(strings.NewReader(test.src))
		if err != nil {
			t.Errorf("%s: got error %v", test.name, err)
			continue
		}
		if !reflect.DeepEqual(got.Keys(), want.Keys()) {
			t.Errorf("%s: Keys got %q, want %q", test.name, got.Keys(), want.Keys())
			continue
		}
		for _, k := range want.Keys() {
			g, _ := got.Get(k)
			w, _ := want.Get(k)
			if g != w {
				t.Errorf("%s: %s got %q, want %q", test.name, k, g, w)
			}
		}
	}
}

func TestTreeLoadersReportParseErrors(t *testing.T) {
	if _, err := LoadYAML(strings.NewReader("a: [unclosed")); !errors.Is(err, ErrParse) {
		t.Errorf("LoadYAML got %v, want ErrParse", err)
	}
	if _, err := LoadTOML(strings.NewReader("a = ")); !errors.Is(err, ErrParse) {
		t.Errorf("LoadTOML got %v, want ErrParse", err)
	}
}

func TestLoadYAMLEmpty(t *testing.T) {
	p, err := LoadYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadYAML got error %v", err)
	}
	if p.Len() != 0 {
		t.Errorf("Len got %d, want 0", p.Len())
	}
}

func TestLoaderFor(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"log.yaml":       "rootCategory: INFO, A\n",
		"log.YML":        "rootCategory: INFO, A\n",
		"log.toml":       "rootCategory = \"INFO, A\"\n",
		"log.properties": "rootCategory=INFO, A\n",
		"log.conf":       "rootCategory=INFO, A\n",
	}
	for name, body := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		p, err := LoadFile(path)
		if err != nil {
			t.Errorf("%s: got error %v", name, err)
			continue
		}
		if got, _ := p.Get("rootCategory"); got != "INFO, A" {
			t.Errorf("%s: rootCategory got %q, want %q", name, got, "INFO, A")
		}
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.properties")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("LoadFile(missing) got %v, want ErrNotExist", err)
	}
}
