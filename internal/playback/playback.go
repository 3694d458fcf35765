// Package playback owns the single audio output slot.
package playback

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/media"
)

// Track is one running playback.
type Track interface {
	Stop() error
	Done() <-chan struct{}
}

// Sink starts playing decoded audio.
type Sink interface {
	Start(ctx context.Context, mimeType string, data []byte) (Track, error)
}

// Controller plays at most one track at a time. Play interrupts whatever is
// playing; nothing is ever queued. Failures are logged, never returned.
type Controller struct {
	sink   Sink
	logger zerolog.Logger

	mu      sync.Mutex
	current Track
	ref     string
}

func NewController(sink Sink, logger zerolog.Logger) *Controller {
	return &Controller{sink: sink, logger: logger}
}

func (c *Controller) Play(audioRef string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()

	mimeType, data, err := media.DecodeDataURI(audioRef)
	if err != nil {
		c.logger.Warn().Err(err).Msg("cannot play audio")
		return
	}
	track, err := c.sink.Start(context.Background(), mimeType, data)
	if err != nil {
		c.logger.Warn().Err(err).Str("mime", mimeType).Msg("playback failed")
		return
	}
	c.current, c.ref = track, audioRef

	go func() {
		<-track.Done()
		c.mu.Lock()
		if c.current == track {
			c.current, c.ref = nil, ""
		}
		c.mu.Unlock()
	}()
}

// Stop is a no-op when nothing plays.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Playing returns the reference of the active track.
func (c *Controller) Playing() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ref, c.current != nil
}

func (c *Controller) stopLocked() {
	if c.current == nil {
		return
	}
	if err := c.current.Stop(); err != nil {
		c.logger.Debug().Err(err).Msg("stop playback")
	}
	c.current, c.ref = nil, ""
}

// Discard accepts audio and finishes immediately. Used when no speaker is
// attached.
type Discard struct{}

func (Discard) Start(context.Context, string, []byte) (Track, error) {
	done := make(chan struct{})
	close(done)
	return finished(done), nil
}

type finished chan struct{}

func (f finished) Stop() error { return nil }

func (f finished) Done() <-chan struct{} { return f }
