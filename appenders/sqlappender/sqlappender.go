// Package sqlappender provides a catlog appender storing events as rows of
// a SQLite table. Importing the package registers the SQLiteAppender kind
// with propconfig:
//
//	appender.S=SQLiteAppender
//	appender.S.path=/var/lib/app/log.db
//	appender.S.table=events
//
// The table is created if it does not exist, with columns ts (unix
// nanoseconds), category, priority (numeric), priority_name, ndc and
// message.
package sqlappender

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/spaceweasel/catlog"
	"github.com/spaceweasel/catlog/propconfig"
)

const (
	DefaultPath  = "catlog.db"
	DefaultTable = "log_events"

	dirPermissions    = 0750
	connectionTimeout = 5 * time.Second
	insertTimeout     = 5 * time.Second
	busyTimeoutMillis = 5000
)

// ErrInvalidTable is returned for a table name that is not a plain SQL
// identifier.
var ErrInvalidTable = errors.New("sqlappender: invalid table name")

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Appender inserts one row per event. It does not use a layout.
type Appender struct {
	*catlog.AppenderBase

	mu     sync.Mutex
	db     *sql.DB
	insert *sql.Stmt
	path   string
	table  string
	log    *slog.Logger
}

// New opens (creating if needed) the SQLite database at path and the table
// within it. log receives insert failures; nil selects slog.Default().
func New(name, path, table string, log *slog.Logger) (*Appender, error) {
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}
	if log == nil {
		log = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), dirPermissions); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=%d", path, busyTimeoutMillis))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		ts            INTEGER NOT NULL,
		category      TEXT NOT NULL,
		priority      INTEGER NOT NULL,
		priority_name TEXT NOT NULL,
		ndc           TEXT NOT NULL,
		message       TEXT NOT NULL
	)`, table)); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("creating table %s: %w", table, err)
	}

	stmt, err := db.PrepareContext(ctx, fmt.Sprintf(
		`INSERT INTO %s (ts, category, priority, priority_name, ndc, message) VALUES (?, ?, ?, ?, ?, ?)`,
		table))
	if err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("preparing insert: %w", err)
	}

	return &Appender{
		AppenderBase: catlog.NewAppenderBase(name),
		db:           db,
		insert:       stmt,
		path:         path,
		table:        table,
		log:          log,
	}, nil
}

// Path returns the database file path.
func (a *Appender) Path() string {
	return a.path
}

// Table returns the table events are written to.
func (a *Appender) Table() string {
	return a.table
}

// DB returns the underlying database handle, for reading events back.
func (a *Appender) DB() *sql.DB {
	return a.db
}

func (a *Appender) DoAppend(ev *catlog.LoggingEvent) {
	if !a.Accepts(ev.Priority) {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.insert == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	_, err := a.insert.ExecContext(ctx,
		ev.Timestamp.UnixNano(),
		ev.Category,
		int(ev.Priority),
		ev.Priority.String(),
		ev.NDC,
		ev.Message)
	if err != nil {
		a.log.Warn("sqlite insert failed", "appender", a.Name(), "table", a.table, "error", err)
	}
}

// Close closes the database. Later events are dropped.
func (a *Appender) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.insert == nil {
		return nil
	}
	err := errors.Join(a.insert.Close(), a.db.Close())
	a.insert = nil
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}

func init() {
	propconfig.RegisterAppender("SQLiteAppender", build)
}

func build(name string, props propconfig.Props) (catlog.Appender, error) {
	a, err := New(name,
		props.String("path", DefaultPath),
		props.String("table", DefaultTable),
		nil)
	if err != nil {
		return nil, err
	}
	return a, nil
}
