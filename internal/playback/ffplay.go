package playback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// FFPlaySink pipes encoded audio into an ffplay subprocess, which detects the
// container format itself.
type FFPlaySink struct {
	Path string
}

func NewFFPlaySink() (*FFPlaySink, error) {
	path, err := exec.LookPath("ffplay")
	if err != nil {
		return nil, errors.New("ffplay is required for playback (install ffmpeg/ffplay and ensure it is in PATH)")
	}
	return &FFPlaySink{Path: path}, nil
}

func (s *FFPlaySink) Start(ctx context.Context, mimeType string, data []byte) (Track, error) {
	cmd := exec.CommandContext(ctx, s.Path,
		"-nodisp",
		"-autoexit",
		"-loglevel", "error",
		"-i", "pipe:0",
	)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffplay for %s: %w", mimeType, err)
	}

	t := &ffplayTrack{cmd: cmd, done: make(chan struct{})}
	go func() {
		_ = cmd.Wait()
		close(t.done)
	}()
	return t, nil
}

type ffplayTrack struct {
	cmd  *exec.Cmd
	done chan struct{}
	once sync.Once
}

func (t *ffplayTrack) Stop() error {
	var err error
	t.once.Do(func() {
		select {
		case <-t.done:
			return
		default:
		}
		err = t.cmd.Process.Kill()
		<-t.done
	})
	return err
}

func (t *ffplayTrack) Done() <-chan struct{} {
	return t.done
}
