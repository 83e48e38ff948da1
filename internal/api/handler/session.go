package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/deon-gracias/rag/internal/api/response"
	"github.com/deon-gracias/rag/internal/domain"
	"github.com/deon-gracias/rag/internal/repository/filestore"
	"github.com/deon-gracias/rag/internal/service"
)

var validate = validator.New()

// SessionService is what the session endpoints need from the service layer
type SessionService interface {
	Create(ctx context.Context) (*domain.Session, error)
	List(ctx context.Context) ([]domain.Session, error)
	Get(ctx context.Context, ref string) (*domain.Session, error)
	Delete(ctx context.Context, id int64) (*domain.Session, error)
	History(ctx context.Context, name string) ([]domain.SessionMessage, error)
	Chat(ctx context.Context, name, question string) (*domain.ChatResponse, error)
	CreateAndUpload(ctx context.Context, files []service.Upload, quality string) (*domain.Session, error)
	Upload(ctx context.Context, name string, files []service.Upload) error
}

type SessionHandler struct {
	svc            SessionService
	maxUploadBytes int64
}

func NewSessionHandler(svc SessionService, maxUploadBytes int64) *SessionHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 32 << 20
	}
	return &SessionHandler{svc: svc, maxUploadBytes: maxUploadBytes}
}

// Routes returns the /session subtree
func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/new", h.Create)
	r.Post("/create_and_upload", h.CreateAndUpload)

	r.Route("/{ref}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Delete("/", h.Delete)
		r.Get("/chat", h.History)
		r.Post("/chat", h.Chat)
		r.Post("/upload", h.Upload)
	})
	return r
}

// sessionBody renders a session with a null updated_at when unset
type sessionBody struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

func toBody(s *domain.Session) sessionBody {
	b := sessionBody{ID: s.ID, Name: s.Name, CreatedAt: s.CreatedAt}
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		b.UpdatedAt = &t
	}
	return b
}

type envelope struct {
	OK   bool         `json:"ok"`
	Data *sessionBody `json:"data,omitempty"`
}

// List returns all sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.svc.List(r.Context())
	if err != nil {
		h.fail(w, "failed to list sessions", err)
		return
	}

	out := make([]sessionBody, 0, len(sessions))
	for i := range sessions {
		out = append(out, toBody(&sessions[i]))
	}
	response.OK(w, out)
}

// Create creates an empty session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Create(r.Context())
	if err != nil {
		h.fail(w, "failed to create session", err)
		return
	}
	response.OK(w, toBody(session))
}

// Get returns one session by id or name
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	session, err := h.svc.Get(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.fail(w, "failed to get session", err)
		return
	}
	response.OK(w, toBody(session))
}

// Delete deletes a session by numeric id
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "ref"), 10, 64)
	if err != nil {
		response.Unprocessable(w, "session id must be an integer")
		return
	}

	session, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, "failed to delete session", err)
		return
	}

	body := toBody(session)
	response.OK(w, envelope{OK: true, Data: &body})
}

// History returns a session's persisted messages
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	messages, err := h.svc.History(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		h.fail(w, "failed to fetch session history", err)
		return
	}
	response.OK(w, messages)
}

type chatAnswer struct {
	Content  string                   `json:"content"`
	Type     domain.MessageType       `json:"type"`
	Usage    *domain.UsageMetadata    `json:"usage_metadata,omitempty"`
	Response *responseMetadataPayload `json:"response_metadata,omitempty"`
}

type responseMetadataPayload struct {
	Model         string          `json:"model"`
	CreatedAt     time.Time       `json:"created_at"`
	Message       responseMessage `json:"message"`
	TotalDuration int64           `json:"total_duration"`
	LoadDuration  int64           `json:"load_duration"`
}

type responseMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func toAnswer(resp *domain.ChatResponse) chatAnswer {
	a := chatAnswer{Content: resp.Content, Type: resp.Type, Usage: resp.Usage}
	if m := resp.Response; m != nil {
		a.Response = &responseMetadataPayload{
			Model:         m.Model,
			CreatedAt:     m.CreatedAt,
			Message:       responseMessage{Role: m.Role},
			TotalDuration: m.TotalDuration.Nanoseconds(),
			LoadDuration:  m.LoadDuration.Nanoseconds(),
		}
	}
	return a
}

// Chat answers a question in a session
func (h *SessionHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req domain.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Unprocessable(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		response.Unprocessable(w, validationDetail(err))
		return
	}

	resp, err := h.svc.Chat(r.Context(), chi.URLParam(r, "ref"), req.Question)
	if err != nil {
		h.fail(w, "failed to answer question", err)
		return
	}
	response.OK(w, toAnswer(resp))
}

type uploadForm struct {
	Quality string `validate:"required,oneof=fast hi-res"`
}

// CreateAndUpload creates a session from uploaded files
func (h *SessionHandler) CreateAndUpload(w http.ResponseWriter, r *http.Request) {
	files, cleanup, ok := h.readFiles(w, r)
	if !ok {
		return
	}
	defer cleanup()

	form := uploadForm{Quality: r.FormValue("quality")}
	if err := validate.Struct(form); err != nil {
		response.Unprocessable(w, validationDetail(err))
		return
	}

	session, err := h.svc.CreateAndUpload(r.Context(), files, form.Quality)
	if err != nil {
		h.fail(w, "failed to upload data", err)
		return
	}

	body := toBody(session)
	response.OK(w, envelope{OK: true, Data: &body})
}

// Upload adds files to an existing session
func (h *SessionHandler) Upload(w http.ResponseWriter, r *http.Request) {
	files, cleanup, ok := h.readFiles(w, r)
	if !ok {
		return
	}
	defer cleanup()

	if err := h.svc.Upload(r.Context(), chi.URLParam(r, "ref"), files); err != nil {
		h.fail(w, "failed to upload data", err)
		return
	}
	response.OK(w, map[string]bool{"ok": true})
}

func (h *SessionHandler) readFiles(w http.ResponseWriter, r *http.Request) ([]service.Upload, func(), bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(w, http.StatusRequestEntityTooLarge, "upload too large")
			return nil, nil, false
		}
		response.Unprocessable(w, "invalid multipart form")
		return nil, nil, false
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		response.Unprocessable(w, "files: field required")
		return nil, nil, false
	}

	var opened []multipart.File
	cleanup := func() {
		for _, f := range opened {
			f.Close()
		}
		r.MultipartForm.RemoveAll()
	}

	files := make([]service.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			cleanup()
			response.InternalError(w, "failed to read upload")
			return nil, nil, false
		}
		opened = append(opened, f)
		files = append(files, service.Upload{Name: fh.Filename, Content: f})
	}
	return files, cleanup, true
}

// fail maps service errors onto status codes
func (h *SessionHandler) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		response.NotFound(w, "Chat session not found")
	case errors.Is(err, domain.ErrInvalidQuality),
		errors.Is(err, domain.ErrNoFiles),
		errors.Is(err, filestore.ErrInvalidName):
		response.Unprocessable(w, err.Error())
	default:
		log.Error().Err(err).Msg(msg)
		response.InternalError(w, msg)
	}
}

func validationDetail(err error) any {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	detail := make([]map[string]string, 0, len(verrs))
	for _, e := range verrs {
		msg := "validation failed on " + e.Tag()
		switch e.Tag() {
		case "required":
			msg = "field required"
		case "oneof":
			msg = fmt.Sprintf("must be one of: %s", e.Param())
		}
		detail = append(detail, map[string]string{
			"loc": e.Field(),
			"msg": msg,
		})
	}
	return detail
}
