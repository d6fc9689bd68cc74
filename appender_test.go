package catlog

import (
	"bytes"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"
)

func TestNullAppenderDoesNothing(t *testing.T) {
	appender := NewNullAppender("null")
	appender.DoAppend(testEvent())

	if appender.RequiresLayout() {
		t.Error("RequiresLayout got true, want false")
	}
	if err := appender.Close(); err != nil {
		t.Errorf("Close got %v, want <nil>", err)
	}
}

func TestWriterAppenderWithDefaultLayout(t *testing.T) {
	want := "1460225008 INFO app.db.pool {ctx: 2}: Test 34 (56)\n"

	var b bytes.Buffer
	appender := NewWriterAppender("w", &b)
	appender.DoAppend(testEvent())

	got := b.String()
	if got != want {
		t.Errorf("DefaultLayout got %q, want %q", got, want)
	}
}

func TestWriterAppenderSetLayout(t *testing.T) {
	want := "2016-04-09 18:03:28,342-INFOINFO\napp.db.pool ({ctx: 2})\n"

	var b bytes.Buffer
	appender := NewWriterAppender("w", &b)
	l := NewPatternLayout()
	if err := l.SetConversionPattern("%d-%p%p%n%c (%x)%n"); err != nil {
		t.Fatal(err)
	}
	appender.SetLayout(l)
	appender.DoAppend(testEvent())

	got := b.String()
	if got != want {
		t.Errorf("CustomLayout got %q, want %q", got, want)
	}
}

func TestWriterAppenderSetNilLayoutSelectsBasic(t *testing.T) {
	var b bytes.Buffer
	appender := NewWriterAppender("w", &b)
	appender.SetLayout(nil)
	if _, ok := appender.Layout().(*BasicLayout); !ok {
		t.Errorf("Layout got %T, want *BasicLayout", appender.Layout())
	}
}

func TestWriterAppenderThreshold(t *testing.T) {
	var b bytes.Buffer
	appender := NewWriterAppender("w", &b)
	appender.SetLayout(NewSimpleLayout())
	appender.SetThreshold(PriorityWarn)

	ev := testEvent()
	appender.DoAppend(ev)
	ev.Priority = PriorityError
	appender.DoAppend(ev)

	if got, want := b.String(), "ERROR   : Test 34 (56)\n"; got != want {
		t.Errorf("Output got %q, want %q", got, want)
	}
	if got := appender.Threshold(); got != PriorityWarn {
		t.Errorf("Threshold got %v, want %v", got, PriorityWarn)
	}
}

func TestPatternLayoutSetConversionPatternReturnsErrorWhenInvalidSyntax(t *testing.T) {
	want := "invalid syntax at position 5, bla%%%h blah"

	l := NewPatternLayout()
	err := l.SetConversionPattern("bla%%%h blah")
	if err == nil {
		t.Fatalf("Error <nil>, want %q", want)
	}
	if got := err.Error(); got != want {
		t.Errorf("Error got %q, want %q", got, want)
	}
	if got := l.ConversionPattern(); got != DefaultConversionPattern {
		t.Errorf("ConversionPattern got %q, want %q", got, DefaultConversionPattern)
	}
	if got := l.Format(testEvent()); got != "Test 34 (56)\n" {
		t.Errorf("Format got %q, want %q", got, "Test 34 (56)\n")
	}
}

func TestFileAppenderAppendsAndTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	if err := os.WriteFile(path, []byte("old\n"), 0644); err != nil {
		t.Fatal(err)
	}

	var tests = []struct {
		appendTo bool
		want     string
	}{
		{true, "old\nTest 34 (56)\n"},
		{false, "Test 34 (56)\n"},
	}
	for _, test := range tests {
		if err := os.WriteFile(path, []byte("old\n"), 0644); err != nil {
			t.Fatal(err)
		}
		appender, err := NewFileAppender("f", path, test.appendTo, 0644)
		if err != nil {
			t.Fatalf("NewFileAppender got error %v", err)
		}
		appender.SetLayout(NewPatternLayout())
		appender.DoAppend(testEvent())
		appender.Close()

		b, _ := os.ReadFile(path)
		if got := string(b); got != test.want {
			t.Errorf("appendTo=%t got %q, want %q", test.appendTo, got, test.want)
		}
	}
}

func TestFileAppenderReopenFollowsRename(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.log")
	appender, err := NewFileAppender("f", path, false, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer appender.Close()
	appender.SetLayout(NewPatternLayout())

	appender.DoAppend(testEvent())
	if err := os.Rename(path, path+".moved"); err != nil {
		t.Fatal(err)
	}
	if err := appender.Reopen(); err != nil {
		t.Fatalf("Reopen got error %v", err)
	}
	ev := testEvent()
	ev.Message = "after"
	appender.DoAppend(ev)

	b, _ := os.ReadFile(path)
	if got := string(b); got != "after\n" {
		t.Errorf("new file got %q, want %q", got, "after\n")
	}
	b, _ = os.ReadFile(path + ".moved")
	if got := string(b); got != "Test 34 (56)\n" {
		t.Errorf("moved file got %q, want %q", got, "Test 34 (56)\n")
	}
}

func TestFileAppenderReturnsErrorWhenFileCannotBeOpened(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "test.log")
	_, err := NewFileAppender("f", path, true, 0644)
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("NewFileAppender got %v, want ErrNotExist", err)
	}
}

func TestStringQueueAppender(t *testing.T) {
	appender := NewStringQueueAppender("q")
	appender.SetLayout(NewSimpleLayout())
	for _, m := range []string{"one", "two"} {
		ev := testEvent()
		ev.Message = m
		appender.DoAppend(ev)
	}

	if got := appender.QueueSize(); got != 2 {
		t.Fatalf("QueueSize got %d, want 2", got)
	}
	if q := appender.Queue(); q[0] != "INFO    : one\n" || q[1] != "INFO    : two\n" {
		t.Errorf("Queue got %q", q)
	}
	if m, ok := appender.PopMessage(); !ok || m != "INFO    : one\n" {
		t.Errorf("PopMessage got %q, %t", m, ok)
	}
	appender.PopMessage()
	if _, ok := appender.PopMessage(); ok {
		t.Error("PopMessage on empty queue got ok")
	}
	appender.Close()
	if !appender.Closed() {
		t.Error("Closed got false after Close")
	}
}

func TestRollingFileAppenderTracksBytesWritten(t *testing.T) {
	line := "Test 34 (56)\n"
	path := filepath.Join(t.TempDir(), "test.log")
	appender, err := NewRollingFileAppender("r", path, 1024, 1, false, 0644)
	if err != nil {
		t.Fatal(err)
	}
	defer appender.Close()
	appender.SetLayout(NewPatternLayout())

	appender.DoAppend(testEvent())
	if got, want := appender.bytes, uint64(len(line)); got != want {
		t.Errorf("Bytes written got %d, want %d", got, want)
	}
}

func TestRollingFileAppenderRollsOver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	// every message is 6 bytes; roll once 12 bytes have been written
	appender, err := NewRollingFileAppender("r", path, 12, 2, false, 0644)
	if err != nil {
		t.Fatal(err)
	}
	appender.SetLayout(NewPatternLayout())

	for _, m := range []string{"msg-1", "msg-2", "msg-3", "msg-4", "msg-5", "msg-6", "msg-7"} {
		ev := testEvent()
		ev.Message = m
		appender.DoAppend(ev)
	}
	if err := appender.Close(); err != nil {
		t.Fatalf("Close got error %v", err)
	}

	var tests = []struct {
		file string
		want string
	}{
		{path, "msg-7\n"},
		{path + ".1", "msg-5\nmsg-6\n"},
		{path + ".2", "msg-3\nmsg-4\n"},
	}
	for _, test := range tests {
		b, err := os.ReadFile(test.file)
		if err != nil {
			t.Errorf("%s: %v", test.file, err)
			continue
		}
		if got := string(b); got != test.want {
			t.Errorf("%s got %q, want %q", filepath.Base(test.file), got, test.want)
		}
	}
	if _, err := os.Stat(path + ".3"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("backup .3 exists, want at most 2 backups")
	}
}

func TestRollingFileAppenderWithoutBackupsTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.log")
	appender, err := NewRollingFileAppender("r", path, 6, 0, false, 0644)
	if err != nil {
		t.Fatal(err)
	}
	appender.SetLayout(NewPatternLayout())
	for _, m := range []string{"msg-1", "msg-2"} {
		ev := testEvent()
		ev.Message = m
		appender.DoAppend(ev)
	}
	ev := testEvent()
	ev.Message = "end"
	appender.DoAppend(ev)
	appender.Close()

	b, _ := os.ReadFile(path)
	if got := string(b); got != "end\n" {
		t.Errorf("file got %q, want %q", got, "end\n")
	}
	if _, err := os.Stat(path + ".1"); !errors.Is(err, os.ErrNotExist) {
		t.Error("backup .1 exists, want none")
	}
}

func TestRollingFileAppenderWriteAfterClose(t *testing.T) {
	appender, err := NewRollingFileAppender("r", filepath.Join(t.TempDir(), "test.log"), 0, 1, false, 0644)
	if err != nil {
		t.Fatal(err)
	}
	appender.Close()
	if _, err := appender.Write([]byte("x")); !errors.Is(err, os.ErrClosed) {
		t.Errorf("Write after Close got %v, want ErrClosed", err)
	}
	if err := appender.Close(); err != nil {
		t.Errorf("second Close got %v", err)
	}
}

func TestSyslogPacket(t *testing.T) {
	var tests = []struct {
		facility int
		p        Priority
		ident    string
		msg      string
		want     string
	}{
		{FacilityUser, PriorityError, "app", "boom", "<11>app: boom"},
		{FacilityLocal0, PriorityInfo, "app", "hi", "<134>app: hi"},
		{FacilityKern, PriorityFatal, "", "panic", "<0>panic"},
		{FacilityDaemon, PriorityNotSet, "d", "x", "<31>d: x"},
	}
	for _, test := range tests {
		got := string(syslogPacket(test.facility, test.p, test.ident, test.msg))
		if got != test.want {
			t.Errorf("syslogPacket got %q, want %q", got, test.want)
		}
	}

	long := syslogPacket(FacilityUser, PriorityInfo, "app", strings.Repeat("x", 2000))
	if len(long) != maxSyslogMessage {
		t.Errorf("long packet length got %d, want %d", len(long), maxSyslogMessage)
	}

	wide := syslogPacket(FacilityUser, PriorityInfo, "app", strings.Repeat("é", 1000))
	if len(wide) != maxSyslogMessage-1 {
		t.Errorf("wide packet length got %d, want %d", len(wide), maxSyslogMessage-1)
	}
	if !utf8.Valid(wide) {
		t.Error("wide packet split a rune")
	}
}

func TestRemoteSyslogAppenderSendsDatagram(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("no udp: %v", err)
	}
	defer pc.Close()
	port := pc.LocalAddr().(*net.UDPAddr).Port

	appender, err := NewRemoteSyslogAppender("s", "app", "127.0.0.1", -1, port)
	if err != nil {
		t.Fatalf("NewRemoteSyslogAppender got error %v", err)
	}
	defer appender.Close()
	if got := appender.Facility(); got != FacilityUser {
		t.Errorf("Facility got %d, want %d", got, FacilityUser)
	}
	appender.SetLayout(NewPatternLayout())

	ev := testEvent()
	ev.Priority = PriorityWarn
	appender.DoAppend(ev)

	buf := make([]byte, 2048)
	pc.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom got error %v", err)
	}
	if got, want := string(buf[:n]), "<12>app: Test 34 (56)\n"; got != want {
		t.Errorf("datagram got %q, want %q", got, want)
	}
}

func TestRemoteSyslogAppenderDefaults(t *testing.T) {
	appender, err := NewRemoteSyslogAppender("s", "app", "127.0.0.1", -1, -1)
	if err != nil {
		t.Fatalf("NewRemoteSyslogAppender got error %v", err)
	}
	defer appender.Close()
	if got, want := appender.Addr(), "127.0.0.1:514"; got != want {
		t.Errorf("Addr got %q, want %q", got, want)
	}
}
