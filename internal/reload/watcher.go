package reload

import (
	"context"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// DefaultDebounce is the quiet period after the last change before a reload
// is triggered, editors and builds tend to emit several events per save.
const DefaultDebounce = 500 * time.Millisecond

// Watcher reports changes to the watched files and directories.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
}

func NewWatcher(debounce time.Duration, paths ...string) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()

	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}

	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			_ = watcher.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", path)
		}
	}

	return &Watcher{watcher: watcher, debounce: debounce}, nil
}

// Wait blocks until a change was observed and no further change followed
// within the debounce period, returning the last changed path.
func (w *Watcher) Wait(ctx context.Context) (string, error) {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		changed string
	)

	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return "", errors.New("file watcher closed")
			}

			// permission and timestamp changes do not change the content.
			if event.Op == fsnotify.Chmod {
				continue
			}

			log.Debug().Str("path", event.Name).Str("op", event.Op.String()).Msg("change detected")
			changed = event.Name

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Stop()
				timer.Reset(w.debounce)
			}

			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return "", errors.New("file watcher closed")
			}

			log.Warn().Err(err).Msg("file watcher error")

		case <-fire:
			return changed, nil
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
