//go:build !windows && !plan9

package catlog

import (
	"fmt"
	"log/syslog"
	"strings"
)

// LocalSyslogAppender writes formatted events to the local syslog daemon.
type LocalSyslogAppender struct {
	LayoutAppenderBase
	w *syslog.Writer
}

// NewLocalSyslogAppender connects to the local syslog daemon. A negative
// facility selects FacilityUser.
func NewLocalSyslogAppender(name, ident string, facility int) (*LocalSyslogAppender, error) {
	if facility < 0 {
		facility = FacilityUser
	}
	w, err := syslog.New(syslog.Priority(facility)|syslog.LOG_INFO, ident)
	if err != nil {
		return nil, fmt.Errorf("connecting to local syslog: %w", err)
	}
	return &LocalSyslogAppender{
		LayoutAppenderBase: NewLayoutAppenderBase(name),
		w:                  w,
	}, nil
}

func (a *LocalSyslogAppender) DoAppend(ev *LoggingEvent) {
	if !a.Accepts(ev.Priority) {
		return
	}
	msg := strings.TrimRight(a.Format(ev), "\n")
	switch SyslogSeverity(ev.Priority) {
	case sevEmerg:
		a.w.Emerg(msg)
	case sevAlert:
		a.w.Alert(msg)
	case sevCrit:
		a.w.Crit(msg)
	case sevErr:
		a.w.Err(msg)
	case sevWarning:
		a.w.Warning(msg)
	case sevNotice:
		a.w.Notice(msg)
	case sevInfo:
		a.w.Info(msg)
	default:
		a.w.Debug(msg)
	}
}

func (a *LocalSyslogAppender) Close() error {
	return a.w.Close()
}
