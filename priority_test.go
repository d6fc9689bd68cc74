package catlog

import (
	"errors"
	"testing"
)

func TestParsePriority(t *testing.T) {
	var tests = []struct {
		name string
		want Priority
	}{
		{"FATAL", PriorityFatal},
		{"EMERG", PriorityEmerg},
		{"alert", PriorityAlert},
		{"Crit", PriorityCrit},
		{"ERROR", PriorityError},
		{" warn ", PriorityWarn},
		{"NOTICE", PriorityNotice},
		{"info", PriorityInfo},
		{"DEBUG", PriorityDebug},
		{"NOTSET", PriorityNotSet},
		{"650", Priority(650)},
	}
	for _, test := range tests {
		got, err := ParsePriority(test.name)
		if err != nil {
			t.Errorf("ParsePriority(%q) got error %v", test.name, err)
			continue
		}
		if got != test.want {
			t.Errorf("ParsePriority(%q) got %v, want %v", test.name, got, test.want)
		}
	}
}

func TestParsePriorityReturnsErrorWhenNotRecognised(t *testing.T) {
	for _, name := range []string{"", "LOUD", "WARNING", "-1", "1.5"} {
		if _, err := ParsePriority(name); !errors.Is(err, ErrUnknownPriority) {
			t.Errorf("ParsePriority(%q) got %v, want ErrUnknownPriority", name, err)
		}
	}
}

func TestPriorityString(t *testing.T) {
	var tests = []struct {
		p    Priority
		want string
	}{
		{PriorityFatal, "FATAL"},
		{PriorityWarn, "WARN"},
		{PriorityNotSet, "NOTSET"},
		{Priority(650), "INFO"},
		{Priority(900), "UNKNOWN"},
		{Priority(-1), "UNKNOWN"},
	}
	for _, test := range tests {
		if got := test.p.String(); got != test.want {
			t.Errorf("Priority(%d).String() got %q, want %q", int(test.p), got, test.want)
		}
	}
}

func TestSyslogSeverity(t *testing.T) {
	var tests = []struct {
		p    Priority
		want int
	}{
		{PriorityFatal, 0},
		{PriorityAlert, 1},
		{PriorityCrit, 2},
		{PriorityError, 3},
		{PriorityWarn, 4},
		{PriorityNotice, 5},
		{PriorityInfo, 6},
		{PriorityDebug, 7},
		{PriorityNotSet, 7},
		{Priority(-5), 0},
	}
	for _, test := range tests {
		if got := SyslogSeverity(test.p); got != test.want {
			t.Errorf("SyslogSeverity(%v) got %d, want %d", test.p, got, test.want)
		}
	}
}
