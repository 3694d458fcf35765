package consultation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"medical-intake-assistant/internal/locate"
	"medical-intake-assistant/internal/media"
	"medical-intake-assistant/internal/prescription"
)

const (
	maxUploadBytes = 10 << 20
	qrCodeSize     = 256
)

// DocumentRenderer turns a prescription into a printable document.
type DocumentRenderer interface {
	RenderPDF(view PrescriptionView) ([]byte, error)
}

type Handler struct {
	svc    Service
	docs   DocumentRenderer
	logger zerolog.Logger
}

func NewHandler(svc Service, docs DocumentRenderer, logger zerolog.Logger) *Handler {
	return &Handler{svc: svc, docs: docs, logger: logger}
}

func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// fail maps service errors to HTTP statuses.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrEmptyTurn), errors.Is(err, ErrUnsupportedLanguage):
		status = http.StatusBadRequest
	case errors.Is(err, ErrDiagnosisUnavailable), errors.Is(err, ErrNoPrescription):
		status = http.StatusConflict
	case errors.Is(err, ErrDeliveryDisabled):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	}
	h.Error(w, status, err.Error())
}

func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid session id")
		return uuid.Nil, false
	}
	return id, true
}

type OpenSessionRequest struct {
	DeviceID string `json:"device_id"`
}

func (h *Handler) OpenSession(w http.ResponseWriter, r *http.Request) {
	var req OpenSessionRequest
	if err := decodeOptional(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	snap, err := h.svc.Open(r.Context(), req.DeviceID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusCreated, snap)
}

// decodeOptional reads a JSON body that clients may leave out. Chunked bodies
// have no length, so an empty body is only known once decoding hits EOF.
func decodeOptional(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, snap)
}

type LanguageRequest struct {
	Language string `json:"language"`
}

func (h *Handler) ChangeLanguage(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req LanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	snap, err := h.svc.ChangeLanguage(r.Context(), id, req.Language)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, snap)
}

func (h *Handler) Restart(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.Restart(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, snap)
}

func (h *Handler) SubmitText(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var turn TextTurn
	if err := json.NewDecoder(r.Body).Decode(&turn); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	snap, err := h.svc.SubmitText(r.Context(), id, turn)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, snap)
}

// SubmitVoice accepts either a multipart upload ("audio" file, optional
// "image" file) or a JSON VoiceTurn carrying data URIs.
func (h *Handler) SubmitVoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}

	var turn VoiceTurn
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&turn); err != nil {
			h.Error(w, http.StatusBadRequest, "invalid request")
			return
		}
	} else {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			h.Error(w, http.StatusBadRequest, "invalid multipart form")
			return
		}
		audioRef, err := formFileDataURI(r, "audio")
		if err != nil {
			h.Error(w, http.StatusBadRequest, "Error retrieving audio file")
			return
		}
		turn.AudioRef = audioRef
		if imageRef, err := formFileDataURI(r, "image"); err == nil {
			turn.ImageRef = imageRef
		} else if v := r.FormValue("image"); strings.HasPrefix(v, "data:") {
			turn.ImageRef = v
		}
	}

	snap, err := h.svc.SubmitVoice(r.Context(), id, turn)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, snap)
}

func formFileDataURI(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", fmt.Errorf("read %s: %w", field, err)
	}
	return media.EncodeDataURI(partMimeType(header, buf.Bytes()), buf.Bytes()), nil
}

func partMimeType(header *multipart.FileHeader, data []byte) string {
	if ct := header.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	return http.DetectContentType(data)
}

type PrescriptionResponse struct {
	Session      Snapshot          `json:"session"`
	Prescription *PrescriptionView `json:"prescription,omitempty"`
}

func (h *Handler) GeneratePrescription(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.svc.GeneratePrescription(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := PrescriptionResponse{Session: snap}
	if view, err := h.svc.Prescription(r.Context(), id); err == nil {
		resp.Prescription = &view
	}
	h.JSON(w, http.StatusOK, resp)
}

func (h *Handler) prescriptionView(w http.ResponseWriter, r *http.Request) (PrescriptionView, bool) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return PrescriptionView{}, false
	}
	view, err := h.svc.Prescription(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return PrescriptionView{}, false
	}
	return view, true
}

func (h *Handler) PrescriptionText(w http.ResponseWriter, r *http.Request) {
	view, ok := h.prescriptionView(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="prescription.txt"`)
	io.WriteString(w, view.PlainText)
}

func (h *Handler) PrescriptionPDF(w http.ResponseWriter, r *http.Request) {
	view, ok := h.prescriptionView(w, r)
	if !ok {
		return
	}
	if h.docs == nil {
		h.fail(w, r, ErrDeliveryDisabled)
		return
	}
	pdf, err := h.docs.RenderPDF(view)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="prescription.pdf"`)
	w.Write(pdf)
}

func (h *Handler) PrescriptionQR(w http.ResponseWriter, r *http.Request) {
	view, ok := h.prescriptionView(w, r)
	if !ok {
		return
	}
	png, err := prescription.QRCode(view.WhatsAppLink, qrCodeSize)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (h *Handler) DeliverPrescription(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeliverPrescription(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HospitalsRequest carries what the client knows about its position.
// GeoError is the client's reason for not sending coordinates.
type HospitalsRequest struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	GeoError  string   `json:"geo_error,omitempty"`
}

func (req HospitalsRequest) geolocator() locate.Geolocator {
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		return &locate.Fixed{Coordinates: locate.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}}
	case req.GeoError != "":
		return locate.Failed{Reason: req.GeoError}
	default:
		return nil
	}
}

type HospitalsResponse struct {
	Result  locate.Result `json:"result"`
	Session Snapshot      `json:"session"`
}

func (h *Handler) FindHospitals(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	var req HospitalsRequest
	if err := decodeOptional(r, &req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	res, snap, err := h.svc.FindHospitals(r.Context(), id, req.geolocator())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, HospitalsResponse{Result: res, Session: snap})
}

func (h *Handler) Suggestions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	out, err := h.svc.Suggestions(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.JSON(w, http.StatusOK, map[string]string{"suggestions": out})
}

type TTSRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

func (h *Handler) HandleTTS(w http.ResponseWriter, r *http.Request) {
	var req TTSRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid request")
		return
	}
	audioRef, err := h.svc.Speak(r.Context(), req.Text, req.Language)
	if err != nil {
		if errors.Is(err, ErrEmptyTurn) {
			h.fail(w, r, err)
			return
		}
		h.logger.Error().Err(err).Msg("speech synthesis failed")
		h.Error(w, http.StatusBadGateway, "TTS failed: "+err.Error())
		return
	}
	mimeType, audio, err := media.DecodeDataURI(audioRef)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", mimeType)
	w.Write(audio)
}

// RegisterRoutes mounts the session API. limit wraps the endpoints that reach
// remote collaborators; nil disables it.
func RegisterRoutes(r chi.Router, h *Handler, limit func(http.Handler) http.Handler) {
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	r.With(limit).Post("/tts", h.HandleTTS)
	r.Post("/sessions", h.OpenSession)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Post("/language", h.ChangeLanguage)
		r.Post("/restart", h.Restart)
		r.Get("/prescription.txt", h.PrescriptionText)
		r.Get("/prescription.pdf", h.PrescriptionPDF)
		r.Get("/prescription/qr.png", h.PrescriptionQR)
		r.Post("/hospitals", h.FindHospitals)

		r.Group(func(r chi.Router) {
			r.Use(limit)
			r.Post("/messages", h.SubmitText)
			r.Post("/voice", h.SubmitVoice)
			r.Post("/prescription", h.GeneratePrescription)
			r.Post("/prescription/telegram", h.DeliverPrescription)
			r.Post("/suggestions", h.Suggestions)
		})
	})
}
