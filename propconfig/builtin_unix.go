//go:build !windows && !plan9

package propconfig

import "github.com/spaceweasel/catlog"

func init() {
	RegisterAppender("LocalSyslogAppender", buildLocalSyslog)
}

// LocalSyslogAppender: syslogName, facility (-1 for user).
func buildLocalSyslog(name string, props Props) (catlog.Appender, error) {
	a, err := catlog.NewLocalSyslogAppender(name,
		props.String("syslogName", DefaultSyslogName),
		props.Int("facility", -1))
	if err != nil {
		return nil, err
	}
	return a, nil
}
