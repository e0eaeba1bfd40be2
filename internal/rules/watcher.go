package rules

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce is how long a rule file must stay quiet before a change is
// reported. Editors often write a file in several steps.
const debounce = 100 * time.Millisecond

// Watcher reports settled changes to one rule file. It watches the parent
// directory so atomic rename-on-save still registers.
type Watcher struct {
	Path    string
	Changes <-chan string // Receives Path after each settled change

	changes chan string
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewWatcher creates a watcher for the rule file at path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("rules: watch %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("rules: create watcher: %w", err)
	}

	ch := make(chan string, 1)
	return &Watcher{
		Path:    abs,
		Changes: ch,
		changes: ch,
		done:    make(chan struct{}),
		watcher: fw,
	}, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(filepath.Dir(w.Path)); err != nil {
		return fmt.Errorf("rules: watch %s: %w", filepath.Dir(w.Path), err)
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	var pending time.Time
	ticker := time.NewTicker(debounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.Path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				pending = time.Now()
			}

		case now := <-ticker.C:
			if pending.IsZero() || now.Sub(pending) < debounce {
				continue
			}
			pending = time.Time{}
			// Coalesce with an unread notification.
			select {
			case w.changes <- w.Path:
			default:
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}
