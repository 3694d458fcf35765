package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"medical-intake-assistant/internal/capture"
	"medical-intake-assistant/internal/chat"
	"medical-intake-assistant/internal/consultation"
	"medical-intake-assistant/internal/i18n"
	"medical-intake-assistant/internal/locate"
	"medical-intake-assistant/internal/media"
)

const helpText = `Commands:
  /rec              start recording a voice message
  /stop             stop recording and send it
  /image <path>     attach an image to the next message
  /lang [code]      list languages or switch language (restarts intake)
  /restart          forget the patient details and start over
  /rx [pdf]         create a prescription, optionally saving it as PDF
  /hospitals [lat,lng]  search hospitals near you
  /suggest          suggest follow-up questions
  /replay           play the last spoken answer again
  /mute             toggle audio playback
  /quit             exit
Anything else is sent as a message.`

type terminal struct {
	out     io.Writer
	svc     consultation.Service
	player  *switchablePlayer
	mic     *capture.Controller
	docs    consultation.DocumentRenderer
	session uuid.UUID

	seen      map[string]bool
	lastSnap  consultation.Snapshot
	nextImage string
}

func (t *terminal) help() {
	fmt.Fprintln(t.out, helpText)
}

func (t *terminal) prompt() {
	if t.mic.IsRecording() {
		fmt.Fprint(t.out, "(recording, /stop to send) > ")
		return
	}
	fmt.Fprint(t.out, "> ")
}

// render prints messages not shown before and the queued notices. A voice
// placeholder is printed once its transcript has replaced it.
func (t *terminal) render(snap consultation.Snapshot) {
	t.lastSnap = snap
	for _, m := range snap.Messages {
		if t.seen[m.ID] {
			continue
		}
		t.seen[m.ID] = true
		label := i18n.T(snap.Language, i18n.KeyAppName, nil)
		if m.Role == chat.RoleUser {
			label = "you"
		}
		marker := ""
		if m.AudioRef != "" && m.Role == chat.RoleAssistant {
			marker = " [audio]"
		}
		if m.ImageRef != "" {
			marker += " [image]"
		}
		fmt.Fprintf(t.out, "%s%s: %s\n", label, marker, m.Text)
	}
	for _, n := range snap.Notices {
		fmt.Fprintf(t.out, "! %s: %s\n", n.Title, n.Description)
	}
}

func (t *terminal) report(err error) {
	fmt.Fprintf(t.out, "! %v\n", err)
}

// handle runs one input line. It returns false when the user quits.
func (t *terminal) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	if !strings.HasPrefix(line, "/") {
		t.submitText(ctx, line)
		return true
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/quit", "/exit":
		return false
	case "/help":
		t.help()
	case "/rec":
		if err := t.mic.Start(ctx); err == nil {
			fmt.Fprintln(t.out, "recording...")
		}
	case "/stop":
		if err := t.mic.Stop(ctx); err != nil {
			t.report(err)
		}
	case "/image":
		t.attachImage(arg)
	case "/lang":
		t.changeLanguage(ctx, arg)
	case "/restart":
		snap, err := t.svc.Restart(ctx, t.session)
		if err != nil {
			t.report(err)
			return true
		}
		t.render(snap)
	case "/rx":
		t.prescription(ctx, arg == "pdf")
	case "/hospitals":
		t.hospitals(ctx, arg)
	case "/suggest":
		out, err := t.svc.Suggestions(ctx, t.session)
		if err != nil {
			t.report(err)
			return true
		}
		fmt.Fprintln(t.out, out)
	case "/replay":
		if m, ok := lastSpoken(t.lastSnap.Messages); ok {
			t.player.Play(m.AudioRef)
		} else {
			fmt.Fprintln(t.out, "nothing to replay")
		}
	case "/mute":
		if t.player.toggle() {
			fmt.Fprintln(t.out, "audio muted")
		} else {
			fmt.Fprintln(t.out, "audio on")
		}
	default:
		fmt.Fprintf(t.out, "unknown command %s, try /help\n", cmd)
	}
	return true
}

func (t *terminal) submitText(ctx context.Context, text string) {
	image := t.nextImage
	t.nextImage = ""
	t.mic.AttachImage("")
	snap, err := t.svc.SubmitText(ctx, t.session, consultation.TextTurn{Text: text, ImageRef: image})
	if err != nil {
		t.report(err)
		return
	}
	t.render(snap)
}

func (t *terminal) submitVoice(ctx context.Context, audioRef, imageRef string) error {
	t.nextImage = ""
	snap, err := t.svc.SubmitVoice(ctx, t.session, consultation.VoiceTurn{AudioRef: audioRef, ImageRef: imageRef})
	if err != nil {
		return err
	}
	t.render(snap)
	return nil
}

func (t *terminal) micDenied(error) {
	lang := t.lastSnap.Language
	fmt.Fprintf(t.out, "! %s: %s\n", i18n.T(lang, i18n.KeyMicError, nil), i18n.T(lang, i18n.KeyMicErrorDescription, nil))
}

func (t *terminal) attachImage(path string) {
	if path == "" {
		t.nextImage = ""
		t.mic.AttachImage("")
		fmt.Fprintln(t.out, "image cleared")
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.report(err)
		return
	}
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		t.report(fmt.Errorf("%s is not an image (%s)", path, mimeType))
		return
	}
	t.nextImage = media.EncodeDataURI(mimeType, data)
	t.mic.AttachImage(t.nextImage)
	fmt.Fprintf(t.out, "attached %s\n", path)
}

func (t *terminal) changeLanguage(ctx context.Context, code string) {
	if code == "" {
		for _, l := range i18n.Languages() {
			current := " "
			if l.Code == t.lastSnap.Language {
				current = "*"
			}
			fmt.Fprintf(t.out, "%s %s  %s\n", current, l.Code, l.Label)
		}
		return
	}
	snap, err := t.svc.ChangeLanguage(ctx, t.session, code)
	if err != nil {
		t.report(err)
		return
	}
	t.render(snap)
}

func (t *terminal) prescription(ctx context.Context, savePDF bool) {
	snap, err := t.svc.GeneratePrescription(ctx, t.session)
	if err != nil {
		t.report(err)
		return
	}
	t.render(snap)

	view, err := t.svc.Prescription(ctx, t.session)
	if errors.Is(err, consultation.ErrNoPrescription) {
		return
	}
	if err != nil {
		t.report(err)
		return
	}
	fmt.Fprintf(t.out, "\n%s\n\nWhatsApp: %s\nSMS: %s\n", view.PlainText, view.WhatsAppLink, view.SMSLink)

	if !savePDF {
		return
	}
	pdf, err := t.docs.RenderPDF(view)
	if err != nil {
		t.report(err)
		return
	}
	name := "prescription_" + view.Prescription.CreatedAt.Format("20060102_150405") + ".pdf"
	if err := os.WriteFile(name, pdf, 0o644); err != nil {
		t.report(err)
		return
	}
	fmt.Fprintf(t.out, "saved %s\n", name)
}

func (t *terminal) hospitals(ctx context.Context, arg string) {
	geo, err := parseCoordinates(arg)
	if err != nil {
		t.report(err)
		return
	}
	res, snap, err := t.svc.FindHospitals(ctx, t.session, geo)
	if err != nil {
		t.report(err)
		return
	}
	t.render(snap)
	fmt.Fprintln(t.out, res.URL)
}

// parseCoordinates reads "lat,lng". An empty argument means no position.
func parseCoordinates(arg string) (locate.Geolocator, error) {
	if arg == "" {
		return locate.Failed{Reason: "no position given"}, nil
	}
	latText, lngText, ok := strings.Cut(arg, ",")
	if !ok {
		return nil, fmt.Errorf("expected lat,lng, got %q", arg)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latText), 64)
	if err != nil {
		return nil, fmt.Errorf("latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngText), 64)
	if err != nil {
		return nil, fmt.Errorf("longitude: %w", err)
	}
	return &locate.Fixed{Coordinates: locate.Coordinates{Latitude: lat, Longitude: lng}}, nil
}

func lastSpoken(msgs []chat.Message) (chat.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chat.RoleAssistant && msgs[i].AudioRef != "" {
			return msgs[i], true
		}
	}
	return chat.Message{}, false
}

func (t *terminal) shutdown() {
	t.mic.Cancel()
	t.player.Stop()
	fmt.Fprintln(t.out)
}

// browserOpener shows map searches in the default browser.
type browserOpener struct{}

func (browserOpener) Open(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
