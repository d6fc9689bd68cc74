package catlog

import (
	"fmt"
	"strings"
	"sync"
)

// Layout formats a logging event for an appender.
type Layout interface {
	Format(ev *LoggingEvent) string
}

// BasicLayout formats events as
//
//	<unix seconds> <PRIORITY> <category> <ndc>: <message>
type BasicLayout struct{}

// NewBasicLayout returns a BasicLayout.
func NewBasicLayout() *BasicLayout {
	return &BasicLayout{}
}

func (l *BasicLayout) Format(ev *LoggingEvent) string {
	return fmt.Sprintf("%d %s %s %s: %s\n",
		ev.Timestamp.Unix(),
		ev.Priority,
		ev.Category,
		ev.NDC,
		ev.Message)
}

// SimpleLayout formats events as the priority name, left aligned in eight
// columns, followed by the message.
type SimpleLayout struct{}

// NewSimpleLayout returns a SimpleLayout.
func NewSimpleLayout() *SimpleLayout {
	return &SimpleLayout{}
}

func (l *SimpleLayout) Format(ev *LoggingEvent) string {
	return fmt.Sprintf("%-8s: %s\n", ev.Priority, ev.Message)
}

// DefaultConversionPattern is the pattern a new PatternLayout starts with.
const DefaultConversionPattern = "%m%n"

// PatternLayout formats events according to a conversion pattern made of
// literal text and percent conversions:
//
//	%c  category name; %c{2} keeps the last two name components
//	%d  timestamp; %d{%H:%M:%S} takes a strftime style format, and the
//	    names ISO8601, ABSOLUTE and DATE select common formats
//	%m  message
//	%n  newline
//	%p  priority name
//	%r  milliseconds since the process started
//	%R  seconds since the Unix epoch
//	%x  nested diagnostic context
//	%%  a literal percent sign
//
// Each conversion may carry a format modifier between the percent sign and
// the conversion character: a minimum width, optionally preceded by '-' for
// left alignment, and/or a '.' followed by a maximum width. For example
// %-5p pads the priority name to five columns.
type PatternLayout struct {
	mu         sync.RWMutex
	pattern    string
	components []component
}

// NewPatternLayout returns a PatternLayout using DefaultConversionPattern.
func NewPatternLayout() *PatternLayout {
	l := &PatternLayout{}
	l.SetConversionPattern(DefaultConversionPattern)
	return l
}

// SetConversionPattern replaces the conversion pattern. On error the
// previous pattern stays in effect.
func (l *PatternLayout) SetConversionPattern(pattern string) error {
	c, err := extract(pattern)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.pattern = pattern
	l.components = c
	l.mu.Unlock()
	return nil
}

// ConversionPattern returns the pattern in effect.
func (l *PatternLayout) ConversionPattern() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.pattern
}

func (l *PatternLayout) Format(ev *LoggingEvent) string {
	l.mu.RLock()
	components := l.components
	l.mu.RUnlock()
	var b strings.Builder
	for _, c := range components {
		c.append(&b, ev)
	}
	return b.String()
}
