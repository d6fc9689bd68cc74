package catlog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Priority is the severity of a logging event. Lower values are more severe.
type Priority int

// Predefined priorities. PriorityEmerg and PriorityFatal share a value.
const (
	PriorityEmerg  Priority = 0
	PriorityFatal  Priority = 0
	PriorityAlert  Priority = 100
	PriorityCrit   Priority = 200
	PriorityError  Priority = 300
	PriorityWarn   Priority = 400
	PriorityNotice Priority = 500
	PriorityInfo   Priority = 600
	PriorityDebug  Priority = 700
	PriorityNotSet Priority = 800
)

// ErrUnknownPriority is returned by ParsePriority for unrecognised names.
var ErrUnknownPriority = errors.New("catlog: unknown priority")

var priorityName = []string{
	"FATAL",
	"ALERT",
	"CRIT",
	"ERROR",
	"WARN",
	"NOTICE",
	"INFO",
	"DEBUG",
	"NOTSET",
}

// String returns the upper case name of p. Values between the predefined
// levels take the name of the next more severe level.
func (p Priority) String() string {
	i := int(p) / 100
	if p < 0 || i >= len(priorityName) {
		return "UNKNOWN"
	}
	return priorityName[i]
}

// ParsePriority converts a priority name to its value. Names are matched
// regardless of case and EMERG is accepted as an alias of FATAL. A decimal
// integer is accepted as a raw priority value.
func ParsePriority(name string) (Priority, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	if n == "EMERG" {
		return PriorityEmerg, nil
	}
	for i, s := range priorityName {
		if s == n {
			return Priority(i * 100), nil
		}
	}
	if v, err := strconv.Atoi(n); err == nil && v >= 0 {
		return Priority(v), nil
	}
	return PriorityNotSet, fmt.Errorf("%w: %q", ErrUnknownPriority, name)
}

// syslog severities, RFC 5424 section 6.2.1
const (
	sevEmerg = iota
	sevAlert
	sevCrit
	sevErr
	sevWarning
	sevNotice
	sevInfo
	sevDebug
)

// SyslogSeverity maps p onto the eight syslog severities.
func SyslogSeverity(p Priority) int {
	i := int(p) / 100
	switch {
	case p < 0:
		return sevEmerg
	case i > sevDebug:
		return sevDebug
	}
	return i
}
