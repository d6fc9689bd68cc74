package catlog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

type component interface {
	append(b *strings.Builder, ev *LoggingEvent)
}

type literalComponent struct {
	s string
}

func (c *literalComponent) append(b *strings.Builder, ev *LoggingEvent) {
	b.WriteString(c.s)
}

type categoryComponent struct {
	precision int
}

func (c *categoryComponent) append(b *strings.Builder, ev *LoggingEvent) {
	name := ev.Category
	if c.precision > 0 {
		end := len(name)
		for n := c.precision; n > 0; n-- {
			i := strings.LastIndex(name[:end], ".")
			if i < 0 {
				end = -1
				break
			}
			end = i
		}
		name = name[end+1:]
	}
	b.WriteString(name)
}

type dateComponent struct {
	format string
}

func (c *dateComponent) append(b *strings.Builder, ev *LoggingEvent) {
	strftime(b, c.format, ev.Timestamp)
}

type messageComponent struct{}

func (c *messageComponent) append(b *strings.Builder, ev *LoggingEvent) {
	b.WriteString(ev.Message)
}

type newlineComponent struct{}

func (c *newlineComponent) append(b *strings.Builder, ev *LoggingEvent) {
	b.WriteByte('\n')
}

type priorityComponent struct{}

func (c *priorityComponent) append(b *strings.Builder, ev *LoggingEvent) {
	b.WriteString(ev.Priority.String())
}

type relativeComponent struct{}

func (c *relativeComponent) append(b *strings.Builder, ev *LoggingEvent) {
	b.WriteString(strconv.FormatInt(ev.Timestamp.Sub(startTime).Milliseconds(), 10))
}

type secondsComponent struct{}

func (c *secondsComponent) append(b *strings.Builder, ev *LoggingEvent) {
	b.WriteString(strconv.FormatInt(ev.Timestamp.Unix(), 10))
}

type ndcComponent struct{}

func (c *ndcComponent) append(b *strings.Builder, ev *LoggingEvent) {
	b.WriteString(ev.NDC)
}

type widthComponent struct {
	c         component
	min, max  int
	alignLeft bool
}

func (c *widthComponent) append(b *strings.Builder, ev *LoggingEvent) {
	var tmp strings.Builder
	c.c.append(&tmp, ev)
	s := tmp.String()
	if c.max > 0 && len(s) > c.max {
		n := c.max
		for n > 0 && !utf8.RuneStart(s[n]) {
			n--
		}
		s = s[:n]
	}
	pad := c.min - len(s)
	if pad > 0 && !c.alignLeft {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(s)
	if pad > 0 && c.alignLeft {
		b.WriteString(strings.Repeat(" ", pad))
	}
}

const (
	iso8601Format  = "%Y-%m-%d %H:%M:%S,%l"
	absoluteFormat = "%H:%M:%S,%l"
	dateFormat     = "%d %b %Y %H:%M:%S,%l"
)

// conversions maps a conversion character to a constructor taking the
// optional {...} argument.
var conversions = map[byte]func(opt string) (component, error){
	'c': func(opt string) (component, error) {
		if opt == "" {
			return &categoryComponent{}, nil
		}
		n, err := strconv.Atoi(opt)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid category precision %q", opt)
		}
		return &categoryComponent{precision: n}, nil
	},
	'd': func(opt string) (component, error) {
		switch opt {
		case "", "ISO8601":
			return &dateComponent{format: iso8601Format}, nil
		case "ABSOLUTE":
			return &dateComponent{format: absoluteFormat}, nil
		case "DATE":
			return &dateComponent{format: dateFormat}, nil
		}
		return &dateComponent{format: opt}, nil
	},
	'm': func(string) (component, error) { return &messageComponent{}, nil },
	'n': func(string) (component, error) { return &newlineComponent{}, nil },
	'p': func(string) (component, error) { return &priorityComponent{}, nil },
	'r': func(string) (component, error) { return &relativeComponent{}, nil },
	'R': func(string) (component, error) { return &secondsComponent{}, nil },
	'x': func(string) (component, error) { return &ndcComponent{}, nil },
}

// extract parses a conversion pattern into components.
func extract(pattern string) ([]component, error) {
	s := []component{}
	p := []byte{}
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if c != '%' {
			p = append(p, c)
			continue
		}
		start := i
		if i+1 == len(pattern) {
			return nil, fmt.Errorf("invalid syntax at position %d, %s", start, pattern)
		}
		if pattern[i+1] == '%' { //escaped
			p = append(p, c)
			i++
			continue
		}
		i++

		// save what we have
		if len(p) > 0 {
			s = append(s, &literalComponent{s: string(p)})
			p = []byte{}
		}

		// format modifier
		w := widthComponent{}
		if pattern[i] == '-' {
			w.alignLeft = true
			i++
		}
		i, w.min = digits(pattern, i)
		if i < len(pattern) && pattern[i] == '.' {
			i, w.max = digits(pattern, i+1)
		}
		if i >= len(pattern) {
			return nil, fmt.Errorf("invalid syntax at position %d, %s", start, pattern)
		}

		ctor, ok := conversions[pattern[i]]
		if !ok {
			return nil, fmt.Errorf("invalid syntax at position %d, %s", start, pattern)
		}
		opt := ""
		if i+1 < len(pattern) && pattern[i+1] == '{' {
			end := strings.IndexByte(pattern[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("unterminated option at position %d, %s", i+1, pattern)
			}
			opt = pattern[i+2 : i+1+end]
			i += end + 1
		}
		comp, err := ctor(opt)
		if err != nil {
			return nil, fmt.Errorf("%v at position %d, %s", err, start, pattern)
		}
		if w.min > 0 || w.max > 0 {
			w.c = comp
			comp = &w
		}
		s = append(s, comp)
	}
	if len(p) > 0 {
		s = append(s, &literalComponent{s: string(p)})
	}
	return s, nil
}

// digits reads a run of decimal digits starting at i.
func digits(s string, i int) (int, int) {
	n := 0
	for ; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int(s[i]-'0')
	}
	return i, n
}

const digitChars = "0123456789" // helper to convert int to char

func padNDigits(b *strings.Builder, i, n int) {
	buf := make([]byte, n)
	j := n - 1
	for ; j >= 0 && i > 0; j-- {
		buf[j] = digitChars[i%10]
		i /= 10
	}
	for ; j >= 0; j-- {
		buf[j] = '0'
	}
	b.Write(buf)
}

// strftime writes t to b using a subset of the C strftime conversions plus
// %l for milliseconds. Unknown conversions are written verbatim.
func strftime(b *strings.Builder, format string, t time.Time) {
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 == len(format) {
			b.WriteByte(format[i])
			continue
		}
		i++
		switch format[i] {
		case 'Y':
			padNDigits(b, t.Year(), 4)
		case 'y':
			padNDigits(b, t.Year()%100, 2)
		case 'm':
			padNDigits(b, int(t.Month()), 2)
		case 'd':
			padNDigits(b, t.Day(), 2)
		case 'e':
			fmt.Fprintf(b, "%2d", t.Day())
		case 'j':
			padNDigits(b, t.YearDay(), 3)
		case 'H':
			padNDigits(b, t.Hour(), 2)
		case 'I':
			h := t.Hour() % 12
			if h == 0 {
				h = 12
			}
			padNDigits(b, h, 2)
		case 'M':
			padNDigits(b, t.Minute(), 2)
		case 'S':
			padNDigits(b, t.Second(), 2)
		case 'l':
			padNDigits(b, t.Nanosecond()/int(time.Millisecond), 3)
		case 'p':
			if t.Hour() < 12 {
				b.WriteString("AM")
			} else {
				b.WriteString("PM")
			}
		case 'a':
			b.WriteString(t.Weekday().String()[:3])
		case 'A':
			b.WriteString(t.Weekday().String())
		case 'b':
			b.WriteString(t.Month().String()[:3])
		case 'B':
			b.WriteString(t.Month().String())
		case 'z':
			b.WriteString(t.Format("-0700"))
		case 'Z':
			b.WriteString(t.Format("MST"))
		case '%':
			b.WriteByte('%')
		default:
			b.WriteByte('%')
			b.WriteByte(format[i])
		}
	}
}
