// internal/receiver/server.go
package receiver

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tamzrod/fatigue-relay/internal/metrics"
	"github.com/tamzrod/fatigue-relay/internal/snapshot"
	"github.com/tamzrod/fatigue-relay/internal/status"
)

// maxBody bounds an upload; snapshots are a few hundred bytes.
const maxBody = 64 << 10

type Config struct {
	SavePath  string
	AccessKey string // empty disables the auth check
	SecretKey string
}

// Server accepts uploaded snapshots and stores the latest one.
type Server struct {
	cfg      Config
	log      *zap.Logger
	metrics  *metrics.Metrics
	gatherer prometheus.Gatherer
	router   *mux.Router
}

func New(cfg Config, log *zap.Logger, m *metrics.Metrics, g prometheus.Gatherer) (*Server, error) {
	if cfg.SavePath == "" {
		return nil, errors.New("receiver: save path required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		cfg:      cfg,
		log:      log,
		metrics:  m,
		gatherer: g,
		router:   mux.NewRouter(),
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/upload", s.handleUpload).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}
}

// Handler exposes the router (tests, custom servers).
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("receiver listening", zap.String("addr", addr), zap.String("save_path", s.cfg.SavePath))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.log.Info("receiver stopped")
	return nil
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="upload"`)
		s.writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBody+1))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "unreadable body")
		return
	}
	if len(body) > maxBody {
		s.writeError(w, http.StatusRequestEntityTooLarge, "body too large")
		return
	}

	snap, err := status.Unmarshal(body)
	if err != nil {
		s.log.Warn("rejected upload", zap.Error(err))
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := snapshot.WriteFile(s.cfg.SavePath, snap); err != nil {
		s.log.Error("save upload failed", zap.String("path", s.cfg.SavePath), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	s.log.Info("upload saved",
		zap.String("device_id", snap.DeviceID),
		zap.Int("status_code", int(snap.StatusCode)),
		zap.Bool("is_alert", snap.IsAlert))

	s.writeJSON(w, http.StatusOK, map[string]string{
		"message": "data received and saved",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.AccessKey == "" {
		return true
	}
	user, pass, ok := r.BasicAuth()
	if !ok {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(s.cfg.AccessKey)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(pass), []byte(s.cfg.SecretKey)) == 1
	return userOK && passOK
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, code int, message string) {
	s.writeJSON(w, code, map[string]string{"error": message})
}
