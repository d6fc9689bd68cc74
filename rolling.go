package catlog

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"
)

// RollingFileAppender writes formatted events to a file and rolls it over
// once maxFileSize bytes have been written: fileName.(n-1) is renamed to
// fileName.n down to fileName being renamed to fileName.1, keeping at most
// maxBackupIndex old files. With maxBackupIndex 0 the file is simply
// truncated.
//
// RollingFileAppender buffers messages to improve performance and reduce
// blocking. Buffered data is written to disk every 30 seconds, before each
// rollover and when Close is called.
type RollingFileAppender struct {
	LayoutAppenderBase
	*bufio.Writer
	wmu            sync.Mutex
	filename       string
	mode           os.FileMode
	file           *os.File
	bytes          uint64
	maxFileSize    uint64
	maxBackupIndex int
	stop           chan struct{}
}

// NewRollingFileAppender opens filename and starts the background flusher.
// When appendTo is true writing continues at the end of an existing file and
// its current size counts towards maxFileSize.
func NewRollingFileAppender(name, filename string, maxFileSize uint64, maxBackupIndex int, appendTo bool, mode os.FileMode) (*RollingFileAppender, error) {
	if maxBackupIndex < 0 {
		maxBackupIndex = 0
	}
	a := &RollingFileAppender{
		LayoutAppenderBase: NewLayoutAppenderBase(name),
		filename:           filename,
		mode:               mode,
		maxFileSize:        maxFileSize,
		maxBackupIndex:     maxBackupIndex,
		stop:               make(chan struct{}),
	}
	if err := a.open(appendTo); err != nil {
		return nil, err
	}
	go a.flusher()
	return a, nil
}

func (a *RollingFileAppender) DoAppend(ev *LoggingEvent) {
	if !a.Accepts(ev.Priority) {
		return
	}
	a.Write([]byte(a.Format(ev)))
}

func (a *RollingFileAppender) Write(p []byte) (n int, err error) {
	a.wmu.Lock()
	defer a.wmu.Unlock()
	if a.Writer == nil {
		return 0, os.ErrClosed
	}
	n, err = a.Writer.Write(p)
	a.bytes += uint64(n)
	if a.maxFileSize > 0 && a.bytes >= a.maxFileSize {
		if rerr := a.rollOver(); rerr != nil && err == nil {
			err = rerr
		}
	}
	return
}

const flushInterval = 30 * time.Second

func (a *RollingFileAppender) flusher() {
	t := time.NewTicker(flushInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			a.wmu.Lock()
			if a.Writer != nil {
				a.Flush()
				a.file.Sync()
			}
			a.wmu.Unlock()
		case <-a.stop:
			return
		}
	}
}

const bufferSize = 256 * 1024

func (a *RollingFileAppender) open(appendTo bool) error {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if !appendTo {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(a.filename, flags, a.mode)
	if err != nil {
		return fmt.Errorf("opening %s: %w", a.filename, err)
	}
	a.bytes = 0
	if info, err := f.Stat(); err == nil {
		a.bytes = uint64(info.Size())
	}
	a.file = f
	a.Writer = bufio.NewWriterSize(a.file, bufferSize)
	return nil
}

// rollOver must be called with wmu held.
func (a *RollingFileAppender) rollOver() error {
	a.Flush()
	a.file.Close()
	if a.maxBackupIndex > 0 {
		os.Remove(backupName(a.filename, a.maxBackupIndex))
		for i := a.maxBackupIndex - 1; i >= 1; i-- {
			os.Rename(backupName(a.filename, i), backupName(a.filename, i+1))
		}
		if err := os.Rename(a.filename, backupName(a.filename, 1)); err != nil {
			a.open(true)
			return fmt.Errorf("rolling over %s: %w", a.filename, err)
		}
	}
	return a.open(false)
}

func backupName(filename string, i int) string {
	return fmt.Sprintf("%s.%d", filename, i)
}

// RollOver forces a rollover regardless of the current file size.
func (a *RollingFileAppender) RollOver() error {
	a.wmu.Lock()
	defer a.wmu.Unlock()
	if a.Writer == nil {
		return os.ErrClosed
	}
	return a.rollOver()
}

// Close flushes buffered data, stops the flusher and closes the file.
func (a *RollingFileAppender) Close() error {
	a.wmu.Lock()
	defer a.wmu.Unlock()
	if a.Writer == nil {
		return nil
	}
	close(a.stop)
	a.Flush()
	err := a.file.Close()
	a.Writer = nil
	a.file = nil
	return err
}
