package core

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Delay between the last change and the new export. Editors often save a file in multiple writes.
var watchDebounce = 200 * time.Millisecond

// Watch exports the note, then exports it again each time a file of the vault changes,
// until ctx is cancelled. Files written by the export itself are ignored.
func (e *Exporter) Watch(ctx context.Context, notePath string, callback BatchCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := e.addWatchDirs(w); err != nil {
		return err
	}
	CurrentLogger().Infof("Watching %q", e.vault.Root())

	written := make(map[string]bool)
	export := func() {
		e.Reset()
		result, err := e.Export(ctx, notePath)
		written = make(map[string]bool)
		if result != nil {
			written[result.OutputPath] = true
			for _, attachment := range result.Attachments {
				written[attachment.Dest] = true
			}
		}
		callback(notePath, result, err)
	}
	export()

	var timer *time.Timer
	var timerCh <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case <-timerCh:
			timer, timerCh = nil, nil
			export()

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if written[event.Name] || !e.watched(event.Name) {
				continue
			}
			if event.Op&fsnotify.Create != 0 {
				// New directories must be watched too
				if err := e.addWatchDir(w, event.Name); err != nil {
					CurrentLogger().Debugf("Unable to watch %q: %v", event.Name, err)
				}
			}
			CurrentLogger().Tracef("Change detected: %s", event)
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerCh = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			CurrentLogger().Warnf("Watcher error: %v", err)
		}
	}
}

// watched reports if a change to the file must trigger a new export.
func (e *Exporter) watched(abs string) bool {
	rel, err := e.vault.Rel(abs)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return false
		}
	}
	return !e.config.IgnoreFile.MustExcludeFile(rel, false)
}

func (e *Exporter) addWatchDirs(w *fsnotify.Watcher) error {
	return e.addWatchDir(w, e.vault.Root())
}

func (e *Exporter) addWatchDir(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != e.vault.Root() {
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			rel, err := e.vault.Rel(path)
			if err != nil || e.config.IgnoreFile.MustExcludeFile(rel, true) {
				return filepath.SkipDir
			}
		}
		return w.Add(path)
	})
}
