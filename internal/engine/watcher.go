// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// =============================================================================
// MODELS DIRECTORY WATCHER
// =============================================================================

// Watcher reports the model files in a directory whenever they change.
// Bursts of events (a large file being copied in) are debounced.
type Watcher struct {
	dir      string
	debounce time.Duration
	onChange func(names []string)
	log      zerolog.Logger

	watcher *fsnotify.Watcher
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	started bool
}

// NewWatcher creates a watcher on dir. onChange is called from the watcher
// goroutine with the full sorted list of model names after each change.
func NewWatcher(dir string, debounce time.Duration, log zerolog.Logger, onChange func(names []string)) (*Watcher, error) {
	base, err := ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		dir:      base,
		debounce: debounce,
		onChange: onChange,
		log:      log.With().Str("component", "watcher").Logger(),
		watcher:  fw,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The directory must exist.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.started = true
	go w.loop()
	return nil
}

// Close stops watching and waits for the goroutine to exit.
// Safe to call more than once, and before Start.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.cancel()
		err = w.watcher.Close()
	})
	if !w.started {
		return err
	}
	select {
	case <-w.done:
	case <-time.After(time.Second):
	}
	return err
}

func (w *Watcher) loop() {
	defer close(w.done)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !IsModelFile(filepath.Base(event.Name)) {
				continue
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			names, err := ScanDir(w.dir)
			if err != nil {
				w.log.Warn().Err(err).Str("dir", w.dir).Msg("rescan failed")
				continue
			}
			w.log.Debug().Int("models", len(names)).Msg("models dir changed")
			if w.onChange != nil {
				w.onChange(names)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}
