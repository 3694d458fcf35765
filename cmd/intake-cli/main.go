// Command intake-cli runs the intake assistant in a terminal, with voice
// recording through ffmpeg and playback through ffplay.
package main

import (
	"bufio"
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/agent"
	"medical-intake-assistant/internal/capture"
	"medical-intake-assistant/internal/config"
	"medical-intake-assistant/internal/consultation"
	"medical-intake-assistant/internal/locate"
	"medical-intake-assistant/internal/playback"
	"medical-intake-assistant/internal/prescription"
	"medical-intake-assistant/internal/report"
	"medical-intake-assistant/internal/store"
)

func main() {
	cfg := config.Load()

	deviceID := flag.String("device", defaultDeviceID(), "device identifier used for stored preferences")
	backend := flag.String("store", cfg.Store, "preference store: sqlite, postgres, redis or memory")
	muted := flag.Bool("mute", false, "start with audio playback muted")
	verbose := flag.Bool("v", false, "log at debug level")
	flag.Parse()

	level := zerolog.WarnLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).
		With().
		Timestamp().
		Logger()

	for _, w := range cfg.Warnings {
		logger.Warn().Msg(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prefs, err := store.Open(ctx, store.Options{
		Backend:        *backend,
		SQLitePath:     cfg.SQLitePath,
		DatabaseURL:    cfg.DatabaseURL,
		RedisURL:       cfg.RedisURL,
		MigrationsPath: cfg.MigrationsPath,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("preference store unavailable")
	}
	defer prefs.Close()

	var sink playback.Sink = playback.Discard{}
	if ff, err := playback.NewFFPlaySink(); err != nil {
		logger.Warn().Err(err).Msg("audio playback disabled")
	} else {
		sink = ff
	}
	player := &switchablePlayer{ctrl: playback.NewController(sink, logger), muted: *muted}

	llm := agent.NewLLMClient(cfg.LLMAPIKey, cfg.LLMBaseURL, cfg.LLMModel)
	voice := agent.NewVoice(
		agent.NewElevenLabsClient(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsModel),
		agent.NewWhisperClient(cfg.STTURL),
	)
	var speaker agent.Speaker
	if cfg.ElevenLabsAPIKey != "" {
		speaker = voice
	}

	svc := consultation.NewService(consultation.Deps{
		Store:       prefs,
		Analyzer:    agent.NewAnalyzer(llm, speaker, logger),
		Transcriber: voice,
		Speaker:     speaker,
		Suggester:   llm,
		Assembler:   prescription.NewAssembler(llm),
		Finder:      locate.NewFinder(browserOpener{}, logger),
		Player:      player,
	}, logger)

	t := &terminal{
		out:    os.Stdout,
		svc:    svc,
		player: player,
		docs:   report.NewService(nil, 0, cfg.PDFFontPath, logger),
		seen:   make(map[string]bool),
	}
	t.mic = capture.NewController(capture.FFmpegMicrophone{}, t.submitVoice, t.micDenied, logger)

	snap, err := svc.Open(ctx, *deviceID)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open session")
	}
	t.session = snap.ID
	t.render(snap)
	t.help()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		t.prompt()
		select {
		case <-ctx.Done():
			t.shutdown()
			return
		case line, ok := <-lines:
			if !ok || !t.handle(ctx, line) {
				t.shutdown()
				return
			}
		}
	}
}

func defaultDeviceID() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		return "terminal"
	}
	return "terminal-" + host
}

// switchablePlayer lets /mute silence playback without touching the session.
type switchablePlayer struct {
	ctrl  *playback.Controller
	muted bool
}

func (p *switchablePlayer) Play(audioRef string) {
	if p.muted {
		return
	}
	p.ctrl.Play(audioRef)
}

func (p *switchablePlayer) Stop() {
	p.ctrl.Stop()
}

func (p *switchablePlayer) toggle() bool {
	p.muted = !p.muted
	if p.muted {
		p.ctrl.Stop()
	}
	return p.muted
}
