package propconfig

import (
	"fmt"
	"os"
	"strings"

	"github.com/spaceweasel/catlog"
)

// Defaults used when an appender sub-property is absent.
const (
	DefaultFileName       = "catlog.log"
	DefaultFileMode       = 0644
	DefaultMaxFileSize    = 10 * 1024 * 1024
	DefaultMaxBackupIndex = 1
	DefaultSyslogName     = "syslog"
	DefaultSyslogHost     = "localhost"
)

// layoutOptional lists the kinds that keep their built-in BasicLayout when
// appender.<name>.layout is absent. Every other layout appender fails the
// pass with ErrMissingLayout.
var layoutOptional = map[string]bool{
	"ConsoleAppender": true,
}

func init() {
	RegisterAppender("ConsoleAppender", buildConsole)
	RegisterAppender("FileAppender", buildFile)
	RegisterAppender("RollingFileAppender", buildRollingFile)
	RegisterAppender("SyslogAppender", buildRemoteSyslog)
	RegisterAppender("StringQueueAppender", buildStringQueue)
	RegisterAppender("NullAppender", buildNull)

	RegisterLayout("BasicLayout", buildBasicLayout)
	RegisterLayout("SimpleLayout", buildSimpleLayout)
	RegisterLayout("PatternLayout", buildPatternLayout)
}

// ConsoleAppender: target (stdout|stderr, default stdout).
func buildConsole(name string, props Props) (catlog.Appender, error) {
	if strings.EqualFold(props.String("target", "stdout"), "stderr") {
		return catlog.NewWriterAppender(name, os.Stderr), nil
	}
	return catlog.NewConsoleAppender(name), nil
}

// FileAppender: fileName, append (default true), mode (octal, default 0644).
func buildFile(name string, props Props) (catlog.Appender, error) {
	a, err := catlog.NewFileAppender(name,
		props.String("fileName", DefaultFileName),
		props.Bool("append", true),
		os.FileMode(props.Octal("mode", DefaultFileMode)))
	if err != nil {
		return nil, err
	}
	return a, nil
}

// RollingFileAppender: fileName, maxFileSize (bytes), maxBackupIndex,
// append, mode.
func buildRollingFile(name string, props Props) (catlog.Appender, error) {
	size := props.Int("maxFileSize", DefaultMaxFileSize)
	if size < 0 {
		size = DefaultMaxFileSize
	}
	a, err := catlog.NewRollingFileAppender(name,
		props.String("fileName", DefaultFileName),
		uint64(size),
		props.Int("maxBackupIndex", DefaultMaxBackupIndex),
		props.Bool("append", true),
		os.FileMode(props.Octal("mode", DefaultFileMode)))
	if err != nil {
		return nil, err
	}
	return a, nil
}

// SyslogAppender: syslogName, syslogHost, facility (-1 for user),
// portNumber (-1 for 514).
func buildRemoteSyslog(name string, props Props) (catlog.Appender, error) {
	a, err := catlog.NewRemoteSyslogAppender(name,
		props.String("syslogName", DefaultSyslogName),
		props.String("syslogHost", DefaultSyslogHost),
		props.Int("facility", -1),
		props.Int("portNumber", -1))
	if err != nil {
		return nil, err
	}
	return a, nil
}

func buildStringQueue(name string, props Props) (catlog.Appender, error) {
	return catlog.NewStringQueueAppender(name), nil
}

func buildNull(name string, props Props) (catlog.Appender, error) {
	return catlog.NewNullAppender(name), nil
}

func buildBasicLayout(props Props) (catlog.Layout, error) {
	return catlog.NewBasicLayout(), nil
}

func buildSimpleLayout(props Props) (catlog.Layout, error) {
	return catlog.NewSimpleLayout(), nil
}

// PatternLayout: ConversionPattern, default pattern kept when absent.
func buildPatternLayout(props Props) (catlog.Layout, error) {
	l := catlog.NewPatternLayout()
	if pattern, ok := props.Lookup("ConversionPattern"); ok {
		if err := l.SetConversionPattern(pattern); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
		}
	}
	return l, nil
}
