package catlog

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Appender is the interface describing a category appender.
// Each category may have one or more appenders and will call DoAppend
// passing in a LoggingEvent. An appender drops events less severe than its
// threshold (NOTSET, the default, accepts everything).
// Appenders reporting RequiresLayout format events with the layout given
// to SetLayout; the others ignore SetLayout.
// Close is called when the appender is no longer needed; implementations
// must use this to flush and close any open files, connections, etc.
type Appender interface {
	Name() string
	DoAppend(ev *LoggingEvent)
	RequiresLayout() bool
	SetLayout(l Layout)
	Threshold() Priority
	SetThreshold(p Priority)
	Close() error
}

// AppenderBase implements the name and threshold handling shared by
// appenders. Embed a *AppenderBase and call Accepts at the start of DoAppend.
type AppenderBase struct {
	name      string
	mu        sync.RWMutex
	threshold Priority
}

// NewAppenderBase returns an AppenderBase with threshold NOTSET.
func NewAppenderBase(name string) *AppenderBase {
	return &AppenderBase{name: name, threshold: PriorityNotSet}
}

func (a *AppenderBase) Name() string {
	return a.name
}

func (a *AppenderBase) Threshold() Priority {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.threshold
}

func (a *AppenderBase) SetThreshold(p Priority) {
	a.mu.Lock()
	a.threshold = p
	a.mu.Unlock()
}

// Accepts reports whether an event of priority p passes the threshold.
func (a *AppenderBase) Accepts(p Priority) bool {
	return p <= a.Threshold()
}

// RequiresLayout reports false; layout appenders override it.
func (a *AppenderBase) RequiresLayout() bool {
	return false
}

// SetLayout does nothing; layout appenders override it.
func (a *AppenderBase) SetLayout(l Layout) {}

// LayoutAppenderBase extends AppenderBase for appenders that format events
// with a layout. The layout defaults to BasicLayout.
type LayoutAppenderBase struct {
	*AppenderBase
	layout Layout
}

// NewLayoutAppenderBase returns a LayoutAppenderBase using BasicLayout.
func NewLayoutAppenderBase(name string) LayoutAppenderBase {
	return LayoutAppenderBase{
		AppenderBase: NewAppenderBase(name),
		layout:       NewBasicLayout(),
	}
}

func (a *LayoutAppenderBase) RequiresLayout() bool {
	return true
}

func (a *LayoutAppenderBase) SetLayout(l Layout) {
	if l == nil {
		l = NewBasicLayout()
	}
	a.mu.Lock()
	a.layout = l
	a.mu.Unlock()
}

// Layout returns the layout in use.
func (a *LayoutAppenderBase) Layout() Layout {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.layout
}

// Format formats ev with the layout in use.
func (a *LayoutAppenderBase) Format(ev *LoggingEvent) string {
	return a.Layout().Format(ev)
}

// NullAppender discards every event. It does not require a layout.
type NullAppender struct {
	*AppenderBase
}

// NewNullAppender returns a NullAppender.
func NewNullAppender(name string) *NullAppender {
	return &NullAppender{AppenderBase: NewAppenderBase(name)}
}

func (a *NullAppender) DoAppend(ev *LoggingEvent) {}

func (a *NullAppender) Close() error { return nil }

// WriterAppender writes formatted events to an io.Writer.
// Writes are serialized.
type WriterAppender struct {
	LayoutAppenderBase
	wmu sync.Mutex
	out io.Writer
}

// NewWriterAppender returns an appender writing to w.
func NewWriterAppender(name string, w io.Writer) *WriterAppender {
	return &WriterAppender{
		LayoutAppenderBase: NewLayoutAppenderBase(name),
		out:                w,
	}
}

// NewConsoleAppender returns an appender writing to standard output.
func NewConsoleAppender(name string) *WriterAppender {
	return NewWriterAppender(name, os.Stdout)
}

func (a *WriterAppender) DoAppend(ev *LoggingEvent) {
	if !a.Accepts(ev.Priority) {
		return
	}
	a.Write([]byte(a.Format(ev)))
}

func (a *WriterAppender) Write(p []byte) (n int, err error) {
	a.wmu.Lock()
	defer a.wmu.Unlock()
	return a.out.Write(p)
}

// Close does not close the underlying writer.
func (a *WriterAppender) Close() error {
	return nil
}

// FileAppender writes formatted events to a file.
type FileAppender struct {
	LayoutAppenderBase
	wmu      sync.Mutex
	filename string
	flags    int
	mode     os.FileMode
	file     *os.File
}

// NewFileAppender opens filename for writing, creating it with the given
// mode if needed. When appendTo is false an existing file is truncated.
func NewFileAppender(name, filename string, appendTo bool, mode os.FileMode) (*FileAppender, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if !appendTo {
		flags |= os.O_TRUNC
	}
	a := &FileAppender{
		LayoutAppenderBase: NewLayoutAppenderBase(name),
		filename:           filename,
		flags:              flags,
		mode:               mode,
	}
	f, err := os.OpenFile(filename, flags, mode)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filename, err)
	}
	a.file = f
	return a, nil
}

// FileName returns the path the appender writes to.
func (a *FileAppender) FileName() string {
	return a.filename
}

func (a *FileAppender) DoAppend(ev *LoggingEvent) {
	if !a.Accepts(ev.Priority) {
		return
	}
	msg := a.Format(ev)
	a.wmu.Lock()
	defer a.wmu.Unlock()
	if a.file != nil {
		a.file.WriteString(msg)
	}
}

// Reopen closes and reopens the file, e.g. after it was moved by an
// external log rotation tool. The file is never truncated on reopen.
func (a *FileAppender) Reopen() error {
	a.wmu.Lock()
	defer a.wmu.Unlock()
	if a.file != nil {
		a.file.Close()
	}
	f, err := os.OpenFile(a.filename, a.flags&^os.O_TRUNC, a.mode)
	if err != nil {
		a.file = nil
		return fmt.Errorf("reopening %s: %w", a.filename, err)
	}
	a.file = f
	return nil
}

func (a *FileAppender) Close() error {
	a.wmu.Lock()
	defer a.wmu.Unlock()
	if a.file == nil {
		return nil
	}
	err := a.file.Close()
	a.file = nil
	return err
}

// StringQueueAppender keeps formatted events in memory. Applications can
// use it to verify logging calls in tests.
type StringQueueAppender struct {
	LayoutAppenderBase
	qmu    sync.Mutex
	queue  []string
	closed bool
}

// NewStringQueueAppender returns an empty StringQueueAppender.
func NewStringQueueAppender(name string) *StringQueueAppender {
	return &StringQueueAppender{LayoutAppenderBase: NewLayoutAppenderBase(name)}
}

func (a *StringQueueAppender) DoAppend(ev *LoggingEvent) {
	if !a.Accepts(ev.Priority) {
		return
	}
	msg := a.Format(ev)
	a.qmu.Lock()
	a.queue = append(a.queue, msg)
	a.qmu.Unlock()
}

// Queue returns a copy of the queued messages, oldest first.
func (a *StringQueueAppender) Queue() []string {
	a.qmu.Lock()
	defer a.qmu.Unlock()
	q := make([]string, len(a.queue))
	copy(q, a.queue)
	return q
}

// QueueSize returns the number of queued messages.
func (a *StringQueueAppender) QueueSize() int {
	a.qmu.Lock()
	defer a.qmu.Unlock()
	return len(a.queue)
}

// PopMessage removes and returns the oldest queued message.
func (a *StringQueueAppender) PopMessage() (string, bool) {
	a.qmu.Lock()
	defer a.qmu.Unlock()
	if len(a.queue) == 0 {
		return "", false
	}
	m := a.queue[0]
	a.queue = a.queue[1:]
	return m, true
}

// Closed reports whether Close has been called.
func (a *StringQueueAppender) Closed() bool {
	a.qmu.Lock()
	defer a.qmu.Unlock()
	return a.closed
}

func (a *StringQueueAppender) Close() error {
	a.qmu.Lock()
	a.closed = true
	a.qmu.Unlock()
	return nil
}
