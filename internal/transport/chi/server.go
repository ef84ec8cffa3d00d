package chi

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/estatedash/internal/domain"
	domast "github.com/kailas-cloud/estatedash/internal/domain/assistant"
	"github.com/kailas-cloud/estatedash/internal/domain/listing"
	"github.com/kailas-cloud/estatedash/internal/domain/listing/filter"
	"github.com/kailas-cloud/estatedash/internal/domain/listing/order"
	logpkg "github.com/kailas-cloud/estatedash/internal/logger"
	"github.com/kailas-cloud/estatedash/internal/metrics"
	dashboarduc "github.com/kailas-cloud/estatedash/internal/usecase/dashboard"
	healthuc "github.com/kailas-cloud/estatedash/internal/usecase/health"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// Server is the JSON HTTP API of the dashboard.
type Server struct {
	accounts      Accounts
	sessions      Sessions
	dashboard     Dashboard
	assistant     Assistant
	health        HealthChecker
	apiKeys       []string
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. assistant can be nil, in which case
// the chat and draft routes answer with the fallback reply.
func NewServer(
	accounts Accounts,
	sessions Sessions,
	dashboard Dashboard,
	assistant Assistant,
	health HealthChecker,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		accounts:      accounts,
		sessions:      sessions,
		dashboard:     dashboard,
		assistant:     assistant,
		health:        health,
		logger:        logger,
		errorHandlers: defaultErrorHandlers(),
	}
}

// WithAPIKeys enables bearer authentication for every non-exempt route.
func (s *Server) WithAPIKeys(keys []string) *Server {
	s.apiKeys = keys
	return s
}

// Router builds the chi router with the middleware stack and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(JSONRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(WideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(s.apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/login", s.Login)
	r.Post("/register", s.Register)
	r.Post("/logout", s.Logout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireSession)
		r.Get("/listings", s.Listings)
		r.Post("/listings/refresh", s.Refresh)
		r.Get("/preferences", s.Preferences)
		r.Route("/properties/{propertyID}", func(r chi.Router) {
			r.Get("/", s.Property)
			r.Get("/images/{index}", s.Image)
			r.Get("/chat", s.Greeting)
			r.Post("/chat", s.Chat)
			r.Post("/draft", s.Draft)
		})
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, CodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, CodeBadRequest, "method not allowed")
	})
	return r
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned by POST /login.
type LoginResponse struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id"`
	FirstName string `json:"first_name"`
}

// Login handles POST /login. A previous session named in the header is
// dropped so the new one starts with empty caches.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "email and password are required")
		return
	}

	u, err := s.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	if prev := r.Header.Get(SessionHeader); prev != "" {
		s.sessions.Delete(prev)
	}
	sess := s.sessions.Create(u.ID, u.FirstName)
	s.requestLogger(r).Info("user logged in", zap.String("user_id", u.ID))

	writeJSON(w, http.StatusOK, LoginResponse{SessionID: sess.ID, UserID: u.ID, FirstName: u.FirstName})
}

// RegisterRequest is the body of POST /register.
type RegisterRequest struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	Password  string `json:"password"`
}

// Register handles POST /register.
func (s *Server) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := s.accounts.Register(r.Context(), req.Email, req.FirstName, req.Password)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"user_id": u.ID})
}

// Logout handles POST /logout. Unknown sessions are not an error.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if id := r.Header.Get(SessionHeader); id != "" {
		s.sessions.Delete(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Listings handles GET /listings.
func (s *Server) Listings(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, err.Error())
		return
	}

	view, err := s.dashboard.View(r.Context(), sess, q)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Refresh handles POST /listings/refresh.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	s.dashboard.Refresh(sess)
	w.WriteHeader(http.StatusNoContent)
}

// Preferences handles GET /preferences.
func (s *Server) Preferences(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	sub, err := s.dashboard.Preferences(r.Context(), sess)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if sub == nil {
		writeError(w, http.StatusNotFound, CodeNotFound, "no preferences submitted yet")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// Property handles GET /properties/{propertyID}.
func (s *Server) Property(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	detail, err := s.dashboard.Property(r.Context(), sess, chi.URLParam(r, "propertyID"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Image handles GET /properties/{propertyID}/images/{index}.
func (s *Server) Image(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		writeError(w, http.StatusBadRequest, CodeValidationFailed, "image index must be a non-negative integer")
		return
	}

	img, err := s.dashboard.Image(r.Context(), sess, chi.URLParam(r, "propertyID"), index)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(img))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img)
}

// ChatRequest is the body of POST /properties/{propertyID}/chat.
type ChatRequest struct {
	Message string           `json:"message"`
	History []domast.Message `json:"history"`
}

// ReplyResponse carries assistant text.
type ReplyResponse struct {
	Reply string `json:"reply"`
}

// Greeting handles GET /properties/{propertyID}/chat.
func (s *Server) Greeting(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if s.assistant == nil {
		s.handleDomainError(w, r, domain.ErrAssistantUnavailable)
		return
	}
	text, err := s.assistant.Greeting(r.Context(), sess, chi.URLParam(r, "propertyID"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReplyResponse{Reply: text})
}

// Chat handles POST /properties/{propertyID}/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	var req ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if s.assistant == nil {
		s.handleDomainError(w, r, domain.ErrAssistantUnavailable)
		return
	}
	reply, err := s.assistant.Chat(r.Context(), sess, chi.URLParam(r, "propertyID"), req.History, req.Message)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReplyResponse{Reply: reply})
}

// DraftRequest is the body of POST /properties/{propertyID}/draft.
type DraftRequest struct {
	Intent string `json:"intent"`
}

// Draft handles POST /properties/{propertyID}/draft.
func (s *Server) Draft(w http.ResponseWriter, r *http.Request) {
	sess, err := sessionFrom(r.Context())
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	var req DraftRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	if s.assistant == nil {
		s.handleDomainError(w, r, domain.ErrAssistantUnavailable)
		return
	}
	msg, err := s.assistant.Draft(r.Context(), sess, chi.URLParam(r, "propertyID"), req.Intent)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ReplyResponse{Reply: msg})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

func (s *Server) requestLogger(r *http.Request) *zap.Logger {
	return logpkg.FromContextOr(r.Context(), s.logger)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// queryFromRequest parses the dashboard query parameters. Absent parameters
// leave the matching filter inactive.
func queryFromRequest(r *http.Request) (dashboarduc.Query, error) {
	params := r.URL.Query()
	var q dashboarduc.Query

	if m := params.Get("mode"); m != "" {
		mode, ok := listing.ParseMode(m)
		if !ok {
			return q, errors.New("mode must be sales or rental")
		}
		q.Mode = mode
	}

	o, err := order.Parse(params.Get("sort"))
	if err != nil {
		return q, err
	}
	q.Sort = o

	var c filter.Criteria
	numbers := []struct {
		name filter.Field
		dst  **float64
	}{
		{filter.FieldWithinKm, &c.WithinKm},
		{filter.FieldMinLeaseYears, &c.MinLeaseYears},
		{filter.FieldMaxServiceCharge, &c.MaxServiceCharge},
		{filter.FieldMaxDeposit, &c.MaxDeposit},
		{filter.FieldMaxCommuteMinutes, &c.MaxCommuteMinutes},
	}
	for _, n := range numbers {
		v, err := floatParam(params.Get(string(n.name)))
		if err != nil {
			return q, errors.New(string(n.name) + " must be a non-negative number")
		}
		*n.dst = v
		// A present but empty parameter clears a preference default.
		if _, ok := params[string(n.name)]; ok && v == nil && n.name != filter.FieldWithinKm {
			q.Clear = append(q.Clear, n.name)
		}
	}
	if _, ok := params[string(filter.FieldWithinKm)]; ok && c.WithinKm == nil {
		km := filter.DefaultRadiusKm
		c.WithinKm = &km
	}

	for _, f := range params["furnish_type"] {
		for _, part := range strings.Split(f, ",") {
			if part = strings.TrimSpace(part); part != "" {
				c.FurnishTypes = append(c.FurnishTypes, part)
			}
		}
	}
	if cf := params.Get("chain_free"); cf != "" {
		b, err := strconv.ParseBool(cf)
		if err != nil {
			return q, errors.New("chain_free must be a boolean")
		}
		c.ChainFree = b
	}
	q.Filters = c
	return q, nil
}

func floatParam(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, errors.New("invalid number")
	}
	return &v, nil
}
