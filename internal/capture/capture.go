// Package capture records one voice message at a time and hands the finished
// recording to the conversation as a voice turn.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/media"
)

var ErrPermissionDenied = errors.New("microphone permission denied")

// Stream is an open microphone. Close releases the device.
type Stream interface {
	io.ReadCloser
	MimeType() string
}

type Microphone interface {
	Open(ctx context.Context) (Stream, error)
}

// Handoff receives the finished recording and the pending image, both as
// data URIs. imageRef may be empty.
type Handoff func(ctx context.Context, audioRef, imageRef string) error

type recording struct {
	stream Stream
	done   chan struct{}

	mu     sync.Mutex
	chunks [][]byte
	err    error
}

func (r *recording) drain() {
	defer close(r.done)
	buf := make([]byte, 4096)
	for {
		n, err := r.stream.Read(buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			r.mu.Lock()
			r.chunks = append(r.chunks, chunk)
			r.mu.Unlock()
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				r.mu.Lock()
				r.err = err
				r.mu.Unlock()
			}
			return
		}
	}
}

type Controller struct {
	mic     Microphone
	handoff Handoff
	notify  func(error)
	logger  zerolog.Logger

	mu           sync.Mutex
	active       *recording
	pendingImage string
}

// NewController wires a microphone to a handoff. notify is called with the
// error when the microphone cannot be opened.
func NewController(mic Microphone, handoff Handoff, notify func(error), logger zerolog.Logger) *Controller {
	return &Controller{mic: mic, handoff: handoff, notify: notify, logger: logger}
}

func (c *Controller) IsRecording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active != nil
}

// AttachImage sets the image sent with the next recording. An empty ref
// clears it.
func (c *Controller) AttachImage(imageRef string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingImage = imageRef
}

// Start opens the microphone. Starting while already recording is a no-op.
// On failure the controller stays idle.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return nil
	}

	stream, err := c.mic.Open(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrPermissionDenied, err)
		c.logger.Warn().Err(err).Msg("microphone unavailable")
		if c.notify != nil {
			c.notify(err)
		}
		return err
	}

	rec := &recording{stream: stream, done: make(chan struct{})}
	go rec.drain()
	c.active = rec
	return nil
}

// Stop releases the microphone, joins the buffered chunks into one blob and
// hands it off with the pending image. Stopping while idle is a no-op.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	rec := c.active
	if rec == nil {
		c.mu.Unlock()
		return nil
	}
	c.active = nil
	image := c.pendingImage
	c.pendingImage = ""
	c.mu.Unlock()

	if err := rec.stream.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("close microphone")
	}
	<-rec.done

	rec.mu.Lock()
	blob := bytes.Join(rec.chunks, nil)
	readErr := rec.err
	rec.mu.Unlock()

	if readErr != nil {
		c.logger.Warn().Err(readErr).Int("bytes", len(blob)).Msg("recording ended with a read error")
	}
	if len(blob) == 0 {
		return errors.New("recording is empty")
	}

	return c.handoff(ctx, media.EncodeDataURI(rec.stream.MimeType(), blob), image)
}

// Cancel releases the microphone and discards the recording and the pending
// image. Cancelling while idle is a no-op.
func (c *Controller) Cancel() {
	c.mu.Lock()
	rec := c.active
	c.active = nil
	c.pendingImage = ""
	c.mu.Unlock()

	if rec == nil {
		return
	}
	if err := rec.stream.Close(); err != nil {
		c.logger.Debug().Err(err).Msg("close microphone")
	}
	<-rec.done
}
