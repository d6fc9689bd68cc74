package catlog

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// LoggingEvent is the structure passed to each appender of a category.
type LoggingEvent struct {
	Category  string
	Message   string
	NDC       string
	Priority  Priority
	Timestamp time.Time
}

var timenow = time.Now // to facilitate testing

var startTime = time.Now()

// output must be called with the hierarchy's pass lock read-held and p
// enabled.
func (c *Category) output(p Priority, msg string) {
	ev := &LoggingEvent{
		Category:  c.name,
		Message:   msg,
		NDC:       c.ndc,
		Priority:  p,
		Timestamp: timenow(),
	}
	c.callAppenders(ev)
}

// print formats args only when p is enabled.
func (c *Category) print(p Priority, args []interface{}) {
	c.h.pass.RLock()
	defer c.h.pass.RUnlock()
	if c.IsPriorityEnabled(p) {
		c.output(p, fmt.Sprint(args...))
	}
}

func (c *Category) printf(p Priority, format string, args []interface{}) {
	c.h.pass.RLock()
	defer c.h.pass.RUnlock()
	if c.IsPriorityEnabled(p) {
		c.output(p, fmt.Sprintf(format, args...))
	}
}

// Log logs with priority p.
// Arguments are handled in the same manner as fmt.Print.
func (c *Category) Log(p Priority, args ...interface{}) {
	c.print(p, args)
}

// Logf logs with priority p.
// Arguments are handled in the same manner as fmt.Printf.
func (c *Category) Logf(p Priority, format string, args ...interface{}) {
	c.printf(p, format, args)
}

// Debug logs with priority DEBUG.
func (c *Category) Debug(args ...interface{}) {
	c.print(PriorityDebug, args)
}

// Debugf logs with priority DEBUG.
func (c *Category) Debugf(format string, args ...interface{}) {
	c.printf(PriorityDebug, format, args)
}

// Info logs with priority INFO.
func (c *Category) Info(args ...interface{}) {
	c.print(PriorityInfo, args)
}

// Infof logs with priority INFO.
func (c *Category) Infof(format string, args ...interface{}) {
	c.printf(PriorityInfo, format, args)
}

// Notice logs with priority NOTICE.
func (c *Category) Notice(args ...interface{}) {
	c.print(PriorityNotice, args)
}

// Noticef logs with priority NOTICE.
func (c *Category) Noticef(format string, args ...interface{}) {
	c.printf(PriorityNotice, format, args)
}

// Warn logs with priority WARN.
func (c *Category) Warn(args ...interface{}) {
	c.print(PriorityWarn, args)
}

// Warnf logs with priority WARN.
func (c *Category) Warnf(format string, args ...interface{}) {
	c.printf(PriorityWarn, format, args)
}

// Error logs with priority ERROR.
func (c *Category) Error(args ...interface{}) {
	c.print(PriorityError, args)
}

// Errorf logs with priority ERROR.
func (c *Category) Errorf(format string, args ...interface{}) {
	c.printf(PriorityError, format, args)
}

// Crit logs with priority CRIT.
func (c *Category) Crit(args ...interface{}) {
	c.print(PriorityCrit, args)
}

// Critf logs with priority CRIT.
func (c *Category) Critf(format string, args ...interface{}) {
	c.printf(PriorityCrit, format, args)
}

// Alert logs with priority ALERT.
func (c *Category) Alert(args ...interface{}) {
	c.print(PriorityAlert, args)
}

// Alertf logs with priority ALERT.
func (c *Category) Alertf(format string, args ...interface{}) {
	c.printf(PriorityAlert, format, args)
}

// Fatal logs with priority FATAL. Unlike the standard log package it does
// not exit.
func (c *Category) Fatal(args ...interface{}) {
	c.print(PriorityFatal, args)
}

// Fatalf logs with priority FATAL. Unlike the standard log package it does
// not exit.
func (c *Category) Fatalf(format string, args ...interface{}) {
	c.printf(PriorityFatal, format, args)
}

// CaptureStandardLog hooks into the standard go log package and redirects
// its output to category c with priority p.
//
// Logging through c blocks while its hierarchy is being reconfigured, so a
// configurator of the same hierarchy must not write its own diagnostics to
// the standard logger (slog.Default included).
func CaptureStandardLog(c *Category, p Priority) {
	log.SetFlags(0)
	log.SetOutput(bridge{c: c, p: p})
}

type bridge struct {
	c *Category
	p Priority
}

func (b bridge) Write(p []byte) (n int, err error) {
	b.c.h.pass.RLock()
	defer b.c.h.pass.RUnlock()
	if b.c.IsPriorityEnabled(b.p) {
		b.c.output(b.p, strings.TrimRight(string(p), "\r\n"))
	}
	return len(p), nil
}
