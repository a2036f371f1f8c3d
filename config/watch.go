package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DefaultDebounce coalesces the bursts of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// ErrNoConfigFile is returned by Watch when no configuration file was read.
var ErrNoConfigFile = errors.New("no configuration file to watch")

// Watch re-decodes the settings whenever the configuration file changes and
// passes them to onChange. Events closer together than debounce are
// coalesced. Settings that fail to decode go to onError and the caller keeps
// its previous settings. Watch returns once watching has started; delivery
// stops when ctx is done.
func Watch(ctx context.Context, v *viper.Viper, debounce time.Duration, onChange func(Config), onError func(error)) error {
	if v.ConfigFileUsed() == "" {
		return ErrNoConfigFile
	}
	events := make(chan fsnotify.Event, 1)
	v.OnConfigChange(func(e fsnotify.Event) {
		select {
		case events <- e:
		default:
		}
	})
	v.WatchConfig()
	go debounceLoop(ctx, v, debounce, events, onChange, onError)
	return nil
}

func debounceLoop(ctx context.Context, v *viper.Viper, debounce time.Duration, events <-chan fsnotify.Event, onChange func(Config), onError func(error)) {
	var timer *time.Timer
	var fire <-chan time.Time
	var last fsnotify.Event
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return
		case e := <-events:
			last = e
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			cfg, err := Decode(v)
			if err != nil {
				if onError != nil {
					onError(fmt.Errorf("reload %s: %w", last.Name, err))
				}
				continue
			}
			onChange(cfg)
		}
	}
}
