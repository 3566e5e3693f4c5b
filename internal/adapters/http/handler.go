package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/madhukiran/stylist-agent/internal/app/chat"
	"github.com/madhukiran/stylist-agent/internal/domain"
)

type Server struct {
	svc           *chat.Service
	maxImageBytes int64
}

type Options struct {
	// MaxImageBytes caps uploaded attachments; requests above it are
	// rejected before the service runs.
	MaxImageBytes int64

	// AllowedOrigins is the CORS allowlist for browser front-ends.
	AllowedOrigins []string

	// StaticDir, when set, is served at / (index.html at the root).
	StaticDir string
}

func NewServer(svc *chat.Service, opts Options) http.Handler {
	s := &Server{svc: svc, maxImageBytes: opts.MaxImageBytes}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)

	// /chat → unified endpoint for text and image (POST)
	mux.HandleFunc("/chat", s.handleChat)

	if opts.StaticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(opts.StaticDir)))
	}

	return chainMiddlewares(mux,
		withCORS(opts.AllowedOrigins),
		withLogging,
		withRequestID,
	)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type chatRequest struct {
	UserID  string `json:"userId"`
	Message string `json:"message"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	userID, message, media, err := s.parseChatRequest(w, r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if userID == "" || (message == "" && media == nil) {
		badRequest(w, "Missing userId or message/image")
		return
	}

	out, err := s.svc.Exchange(r.Context(), chat.ExchangeInput{
		UserID:  domain.UserID(userID),
		Message: message,
		Media:   media,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			badRequest(w, err.Error())
			return
		}
		internalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: out.Reply})
}

// parseChatRequest accepts either a JSON body or a multipart form with an
// optional "image" file field.
func (s *Server) parseChatRequest(w http.ResponseWriter, r *http.Request) (string, string, *domain.Media, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "multipart/form-data" {
		return s.parseMultipart(w, r)
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", "", nil, errors.New("invalid JSON body")
	}
	return req.UserID, req.Message, nil, nil
}

func (s *Server) parseMultipart(w http.ResponseWriter, r *http.Request) (string, string, *domain.Media, error) {
	// Cap the whole body: the image limit plus a little room for the
	// text fields and multipart framing.
	r.Body = http.MaxBytesReader(w, r.Body, s.maxImageBytes+64*1024)

	if err := r.ParseMultipartForm(s.maxImageBytes); err != nil {
		return "", "", nil, errors.New("image too large or malformed form")
	}

	userID := r.FormValue("userId")
	message := r.FormValue("message")

	f, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return userID, message, nil, nil
	}
	if err != nil {
		return "", "", nil, errors.New("invalid image upload")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", "", nil, errors.New("reading image upload")
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	mimeType, _, _ = mime.ParseMediaType(mimeType)

	return userID, message, &domain.Media{MIMEType: strings.ToLower(mimeType), Data: data}, nil
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		Error:   "Internal server error",
		Message: err.Error(),
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
}
