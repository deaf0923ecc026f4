// Package server exposes lox sessions over WebSocket. A client trades the
// configured password for a JWT at /token and then opens /repl, where every
// text frame is run as source in a session private to that connection.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"lox/pkg/config"
)

type Server struct {
	cfg    config.ServerConfig
	logger *slog.Logger
}

func New(cfg config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, logger: logger}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /token", s.handleToken)
	mux.HandleFunc("GET /repl", s.handleREPL)
	return mux
}

// ListenAndServe blocks until ctx is cancelled or the listener fails.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", slog.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("ok"))
}

type tokenRequest struct {
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if !VerifyPassword(s.cfg.PasswordHash, req.Password) {
		s.logger.Warn("token request rejected", slog.String("remote", r.RemoteAddr))
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := SignToken("lox", s.cfg.JWTSecret, s.cfg.TokenTTL)
	if err != nil {
		s.logger.Error("sign token", slog.Any("error", err))
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tokenResponse{Token: token})
}

func (s *Server) handleREPL(w http.ResponseWriter, r *http.Request) {
	if _, err := VerifyToken(bearerToken(r), s.cfg.JWTSecret); err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	rc, err := upgradeToWebSocket(w, r, s.logger)
	if err != nil {
		// The upgrader has already written an error response.
		s.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}
	s.logger.Info("repl session opened", slog.String("remote", r.RemoteAddr))
	rc.serve()
	s.logger.Info("repl session closed", slog.String("remote", r.RemoteAddr))
}

// bearerToken reads "Authorization: Bearer <t>", falling back to ?token=.
func bearerToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); auth != "" {
		if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	return r.URL.Query().Get("token")
}
