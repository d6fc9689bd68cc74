package catlog

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"unicode/utf8"
)

// Syslog facility codes, already shifted into the upper bits of the PRI
// value.
const (
	FacilityKern   = 0 << 3
	FacilityUser   = 1 << 3
	FacilityDaemon = 3 << 3
	FacilityLocal0 = 16 << 3
	FacilityLocal7 = 23 << 3
)

// DefaultSyslogPort is used when no port number is configured.
const DefaultSyslogPort = 514

// maxSyslogMessage bounds a single datagram.
const maxSyslogMessage = 1024

// RemoteSyslogAppender sends formatted events to a syslog daemon over UDP.
// Each datagram is "<PRI>ident: message".
type RemoteSyslogAppender struct {
	LayoutAppenderBase
	wmu      sync.Mutex
	ident    string
	host     string
	facility int
	port     int
	conn     net.Conn
}

// NewRemoteSyslogAppender resolves host and prepares a UDP socket. A
// negative facility selects FacilityUser and a non-positive port selects
// DefaultSyslogPort.
func NewRemoteSyslogAppender(name, ident, host string, facility, port int) (*RemoteSyslogAppender, error) {
	if facility < 0 {
		facility = FacilityUser
	}
	if port <= 0 {
		port = DefaultSyslogPort
	}
	conn, err := net.Dial("udp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("dialing syslog %s:%d: %w", host, port, err)
	}
	return &RemoteSyslogAppender{
		LayoutAppenderBase: NewLayoutAppenderBase(name),
		ident:              ident,
		host:               host,
		facility:           facility,
		port:               port,
		conn:               conn,
	}, nil
}

// Facility returns the facility code in use.
func (a *RemoteSyslogAppender) Facility() int {
	return a.facility
}

// Addr returns the remote address datagrams are sent to.
func (a *RemoteSyslogAppender) Addr() string {
	return net.JoinHostPort(a.host, strconv.Itoa(a.port))
}

func (a *RemoteSyslogAppender) DoAppend(ev *LoggingEvent) {
	if !a.Accepts(ev.Priority) {
		return
	}
	pkt := syslogPacket(a.facility, ev.Priority, a.ident, a.Format(ev))
	a.wmu.Lock()
	defer a.wmu.Unlock()
	if a.conn != nil {
		a.conn.Write(pkt)
	}
}

func syslogPacket(facility int, p Priority, ident, msg string) []byte {
	b := make([]byte, 0, len(msg)+len(ident)+8)
	b = append(b, '<')
	b = strconv.AppendInt(b, int64(facility+SyslogSeverity(p)), 10)
	b = append(b, '>')
	if ident != "" {
		b = append(b, ident...)
		b = append(b, ':', ' ')
	}
	b = append(b, msg...)
	if len(b) > maxSyslogMessage {
		n := maxSyslogMessage
		for n > 0 && !utf8.RuneStart(b[n]) {
			n--
		}
		b = b[:n]
	}
	return b
}

func (a *RemoteSyslogAppender) Close() error {
	a.wmu.Lock()
	defer a.wmu.Unlock()
	if a.conn == nil {
		return nil
	}
	err := a.conn.Close()
	a.conn = nil
	return err
}
