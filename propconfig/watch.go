package propconfig

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch configures the hierarchy from path and then reconfigures it each
// time the file is written or replaced, until ctx is done. The parent
// directory is watched so that editors which save by rename are seen.
//
// After each reload the appenders of the previous pass that are no longer
// bound to any category are closed. Only the initial pass is returned as an
// error. Failures of later passes are logged and passed to the WithOnReload
// callback; with rollback enabled the previous configuration stays in force.
func (c *Configurator) Watch(ctx context.Context, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("propconfig: watch %s: %w", path, err)
	}
	if err := c.ConfigureFile(abs); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("propconfig: watch %s: %w", path, err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("propconfig: watch %s: %w", path, err)
	}
	c.log.Info("watching configuration", "path", abs)

	timer := time.NewTimer(c.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(c.debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			c.log.Warn("watcher error", "path", abs, "error", err)

		case <-timer.C:
			err := c.reload(abs)
			if err != nil {
				c.log.Error("reloading configuration", "path", abs, "error", err)
			} else {
				c.log.Info("configuration reloaded", "path", abs)
			}
			if c.onReload != nil {
				c.onReload(err)
			}
		}
	}
}
