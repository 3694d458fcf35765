package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/signintech/gopdf"

	"medical-intake-assistant/internal/consultation"
	"medical-intake-assistant/internal/i18n"
	"medical-intake-assistant/internal/prescription"
)

type TelegramClient interface {
	SendMessage(chatID int64, text string) error
	SendDocument(chatID int64, fileData []byte, fileName string) error
}

const (
	fontName    = "DejaVu"
	pageMargin  = 40.0
	textWidth   = 515.0
	pageBottom  = 800.0
	qrImageSize = 110.0
)

// Fonts are tried in order. DejaVuSans covers Latin and most symbols.
var defaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

type Service struct {
	tgClient  TelegramClient
	chatID    int64
	fontPaths []string
	logger    zerolog.Logger
}

// NewService builds the prescription renderer. tg may be nil, in which case
// only rendering is available. fontPath, when set, is tried first.
func NewService(tg TelegramClient, chatID int64, fontPath string, logger zerolog.Logger) *Service {
	paths := defaultFontPaths
	if fontPath != "" {
		paths = append([]string{fontPath}, defaultFontPaths...)
	}
	return &Service{tgClient: tg, chatID: chatID, fontPaths: paths, logger: logger}
}

// RenderPDF lays out the prescription on A4 pages in the same order as the
// shared text, with a QR code of the WhatsApp share link.
func (s *Service) RenderPDF(view consultation.PrescriptionView) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.SetMargins(pageMargin, pageMargin, pageMargin, pageMargin)
	pdf.AddPage()

	if err := s.loadFont(pdf); err != nil {
		return nil, err
	}

	t := func(key i18n.Key) string { return i18n.T(view.Language, key, nil) }
	w := &writer{pdf: pdf}
	p := view.Prescription

	w.line(20, t(i18n.KeyAppName)+" - "+t(i18n.KeyPrescriptionTitle))
	w.gap(10)

	if view.Patient != nil {
		w.line(12, fmt.Sprintf("%s: %s", t(i18n.KeyPatientName), view.Patient.Name))
		w.line(12, fmt.Sprintf("%s: %s", t(i18n.KeyPatientAge), view.Patient.Age))
		w.line(12, fmt.Sprintf("%s: %s", t(i18n.KeyPatientPhone), view.Patient.Phone))
		w.gap(8)
	}
	w.line(12, fmt.Sprintf("%s: %s", t(i18n.KeyDate), p.CreatedAt.Format("02 Jan 2006, 15:04")))
	w.gap(12)

	w.line(14, t(i18n.KeyDiagnosisTitle))
	w.paragraph(11, p.Diagnosis)
	w.gap(10)

	w.line(14, t(i18n.KeyMedicinesTitle))
	for _, m := range p.Medicines {
		w.paragraph(11, fmt.Sprintf("- %s (%s)", m.Name, m.Dosage))
	}
	w.gap(10)

	w.line(14, t(i18n.KeyInstructionsTitle))
	w.paragraph(11, p.Instructions)
	w.gap(16)

	w.paragraph(9, t(i18n.KeyDisclaimer))
	if w.err != nil {
		return nil, fmt.Errorf("failed to lay out PDF: %w", w.err)
	}

	if err := s.drawQRCode(pdf, view.WhatsAppLink); err != nil {
		s.logger.Warn().Err(err).Msg("skipping QR code in prescription PDF")
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) loadFont(pdf *gopdf.GoPdf) error {
	var fontErr error
	for _, path := range s.fontPaths {
		if err := pdf.AddTTFFont(fontName, path); err == nil {
			s.logger.Debug().Str("path", path).Msg("loaded PDF font")
			return nil
		} else {
			fontErr = err
		}
	}
	return fmt.Errorf("failed to load font for PDF, install ttf-dejavu or set PDF_FONT_PATH: %w", fontErr)
}

func (s *Service) drawQRCode(pdf *gopdf.GoPdf, link string) error {
	if link == "" {
		return errors.New("no share link")
	}
	png, err := prescription.QRCode(link, 256)
	if err != nil {
		return err
	}
	holder, err := gopdf.ImageHolderByBytes(png)
	if err != nil {
		return err
	}
	if pdf.GetY()+qrImageSize > pageBottom {
		pdf.AddPage()
		pdf.SetY(pageMargin)
	}
	y := pdf.GetY() + 10
	return pdf.ImageByHolder(holder, pageMargin, y, &gopdf.Rect{W: qrImageSize, H: qrImageSize})
}

// SendPrescription delivers the PDF to the configured chat. When the PDF
// cannot be rendered the plain-text prescription is sent instead.
func (s *Service) SendPrescription(ctx context.Context, view consultation.PrescriptionView) error {
	if s.tgClient == nil || s.chatID == 0 {
		return consultation.ErrDeliveryDisabled
	}

	pdf, err := s.RenderPDF(view)
	if err != nil {
		s.logger.Warn().Err(err).Msg("PDF rendering failed, sending prescription as text")
		return s.tgClient.SendMessage(s.chatID, view.PlainText)
	}

	fileName := fmt.Sprintf("prescription_%s.pdf", view.Prescription.CreatedAt.Format("20060102_150405"))
	if err := s.tgClient.SendDocument(s.chatID, pdf, fileName); err != nil {
		s.logger.Error().Err(err).Int64("chat_id", s.chatID).Msg("failed to send prescription document")
		return err
	}
	s.logger.Info().Int64("chat_id", s.chatID).Str("file", fileName).Msg("prescription sent")
	return nil
}

// writer keeps the cursor on the page and starts a new page when the next
// line would not fit. The first error sticks.
type writer struct {
	pdf *gopdf.GoPdf
	err error
}

func (w *writer) setFont(size float64) {
	if w.err == nil {
		w.err = w.pdf.SetFont(fontName, "", size)
	}
}

func (w *writer) line(size float64, text string) {
	w.setFont(size)
	if w.err != nil {
		return
	}
	w.ensureRoom(size)
	w.pdf.SetX(pageMargin)
	if text != "" {
		w.err = w.pdf.Cell(nil, text)
	}
	w.pdf.Br(size + 4)
}

// paragraph wraps text to the page width, keeping explicit line breaks.
func (w *writer) paragraph(size float64, text string) {
	w.setFont(size)
	for _, raw := range strings.Split(text, "\n") {
		if w.err != nil {
			return
		}
		if strings.TrimSpace(raw) == "" {
			w.pdf.Br(size)
			continue
		}
		lines, err := w.pdf.SplitText(raw, textWidth)
		if err != nil {
			w.err = err
			return
		}
		for _, l := range lines {
			w.line(size, l)
		}
	}
}

func (w *writer) gap(h float64) {
	if w.err == nil {
		w.pdf.Br(h)
	}
}

func (w *writer) ensureRoom(size float64) {
	if w.pdf.GetY()+size > pageBottom {
		w.pdf.AddPage()
		w.pdf.SetY(pageMargin)
	}
}
