package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"sync"
	"time"
)

const micSampleRateHz = 16000

// FFmpegMicrophone records the default input device through ffmpeg, encoded
// as Ogg/Opus.
type FFmpegMicrophone struct{}

func (FFmpegMicrophone) Open(ctx context.Context) (Stream, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, errors.New("ffmpeg is required for mic capture (install ffmpeg and ensure it is in PATH)")
	}
	args, err := micFFmpegArgs(runtime.GOOS)
	if err != nil {
		return nil, err
	}

	cmd := exec.Command("ffmpeg", args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open ffmpeg stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("open ffmpeg stdout: %w", err)
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg mic capture: %w", err)
	}
	return &ffmpegStream{cmd: cmd, stdin: stdin, stdout: stdout, eof: make(chan struct{})}, nil
}

func micFFmpegArgs(goos string) ([]string, error) {
	var input []string
	switch goos {
	case "darwin":
		input = []string{"-f", "avfoundation", "-i", ":0"}
	case "linux":
		input = []string{"-f", "pulse", "-i", "default"}
	default:
		return nil, fmt.Errorf("mic capture is not implemented for %s; supported platforms: darwin, linux", goos)
	}
	args := []string{"-hide_banner", "-loglevel", "error"}
	args = append(args, input...)
	return append(args,
		"-ac", "1", "-ar", fmt.Sprint(micSampleRateHz),
		"-c:a", "libopus",
		"-f", "ogg", "-",
	), nil
}

type ffmpegStream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser

	eof     chan struct{}
	eofOnce sync.Once
}

func (s *ffmpegStream) Read(p []byte) (int, error) {
	n, err := s.stdout.Read(p)
	if err != nil {
		s.eofOnce.Do(func() { close(s.eof) })
	}
	return n, err
}

func (s *ffmpegStream) MimeType() string {
	return "audio/ogg"
}

// Close asks ffmpeg to finish the container ("q" on stdin), waits for the
// reader to see the end of the output and kills ffmpeg if that takes too long.
// Wait must not run before reads complete.
func (s *ffmpegStream) Close() error {
	_, _ = io.WriteString(s.stdin, "q")
	_ = s.stdin.Close()

	select {
	case <-s.eof:
	case <-time.After(2 * time.Second):
		_ = s.cmd.Process.Kill()
		<-s.eof
	}
	_ = s.cmd.Wait()
	return nil
}
