package playback

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/media"
)

type fakeTrack struct {
	name    string
	done    chan struct{}
	mu      sync.Mutex
	stopped int
}

func (t *fakeTrack) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped++
	if t.stopped == 1 {
		close(t.done)
	}
	return nil
}

func (t *fakeTrack) Done() <-chan struct{} { return t.done }

func (t *fakeTrack) stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stopped
}

type fakeSink struct {
	mu     sync.Mutex
	tracks []*fakeTrack
	err    error
}

func (s *fakeSink) Start(_ context.Context, _ string, data []byte) (Track, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTrack{name: string(data), done: make(chan struct{})}
	s.tracks = append(s.tracks, t)
	return t, nil
}

func (s *fakeSink) active() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, t := range s.tracks {
		if t.stops() == 0 {
			names = append(names, t.name)
		}
	}
	return names
}

func ref(name string) string { return media.EncodeDataURI("audio/mpeg", []byte(name)) }

func TestController_PlayReplacesCurrent(t *testing.T) {
	sink := &fakeSink{}
	c := NewController(sink, zerolog.Nop())

	c.Play(ref("A"))
	c.Play(ref("B"))

	if got := sink.active(); len(got) != 1 || got[0] != "B" {
		t.Fatalf("active tracks = %v, want [B]", got)
	}
	if playing, ok := c.Playing(); !ok || playing != ref("B") {
		t.Fatalf("Playing() = %q, %v", playing, ok)
	}

	c.Stop()
	c.Stop()
	if got := sink.active(); len(got) != 0 {
		t.Fatalf("active tracks after stop = %v", got)
	}
	if sink.tracks[1].stops() != 1 {
		t.Fatalf("B stopped %d times", sink.tracks[1].stops())
	}
}

func TestController_StopWhenIdle(t *testing.T) {
	c := NewController(&fakeSink{}, zerolog.Nop())
	c.Stop()
	if _, ok := c.Playing(); ok {
		t.Fatal("nothing should be playing")
	}
}

func TestController_FailuresAreSwallowed(t *testing.T) {
	c := NewController(&fakeSink{err: errors.New("autoplay blocked")}, zerolog.Nop())
	c.Play(ref("A"))
	c.Play("not a data uri")
	if _, ok := c.Playing(); ok {
		t.Fatal("failed playback must not occupy the slot")
	}
}

func TestController_ClearsSlotWhenTrackEnds(t *testing.T) {
	sink := &fakeSink{}
	c := NewController(sink, zerolog.Nop())
	c.Play(ref("A"))

	sink.tracks[0].Stop() // finished on its own

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if _, ok := c.Playing(); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("slot not cleared after track finished")
}

func TestDiscard(t *testing.T) {
	c := NewController(Discard{}, zerolog.Nop())
	c.Play(ref("A"))
	c.Stop()
}
