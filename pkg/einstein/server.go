package einstein

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
	"github.com/carlosmiguelsoto/einstein/pkg/telemetry"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Server exposes a Session over HTTP for editor integrations.
type Server struct {
	Session *Session
	Reports *MemoryReporter
}

type ApiError struct {
	Kind    string `json:"kind,omitempty"`
	Message string `json:"message"`
}

type Handler func(w http.ResponseWriter, r *http.Request)
type ApiFunction[Q any, R any] func(context.Context, Q) (R, error)

func WrongJsonInput(expected_type string, err error) *bridge.Error {
	return bridge.NewError(bridge.InvalidInput, fmt.Sprintf("could not parse request body as instance of %s", expected_type), err)
}

func processError(w http.ResponseWriter, err error) {
	code := bridge.HttpCode(err)
	body := ApiError{Message: err.Error()}
	if kind, ok := bridge.KindOf(err); ok {
		body.Kind = string(kind)
	} else if errors.Is(err, ErrSuperseded) {
		code = http.StatusConflict
	}
	telemetry.Log("request failed: "+err.Error(), slog.LevelWarn, "status", code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

func Outer[Q any, R any](handler ApiFunction[Q, R]) Handler {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")

		var query Q
		if r.ContentLength != 0 {
			err := json.NewDecoder(r.Body).Decode(&query)
			if err != nil {
				processError(w, WrongJsonInput(fmt.Sprintf("%T", query), err))
				return
			}
		}
		resp, err := handler(r.Context(), query)
		if err != nil {
			processError(w, err)
			return
		}
		data, err := json.Marshal(resp)
		if err != nil {
			processError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, err = w.Write(data)
		if err != nil {
			telemetry.Log("could not write response: "+err.Error(), slog.LevelWarn)
		}
	}
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (server *Server) ServeCurrentReport(w http.ResponseWriter, r *http.Request) {
	_, lines, ok := server.Reports.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(strings.Join(lines, "\n") + "\n"))
}

func (server *Server) MakeServer() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/{any:.*}", func(w http.ResponseWriter, r *http.Request) {
		headers := w.Header()
		headers.Set("Access-Control-Allow-Origin", "*")
		headers.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		headers.Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding")
	}).Methods("OPTIONS")

	r.HandleFunc("/login", Outer(server.Login)).Methods("POST")
	r.HandleFunc("/logout", Outer(server.Logout)).Methods("POST")
	r.HandleFunc("/upload", Outer(server.Upload)).Methods("POST")
	r.HandleFunc("/tasks/lookup", Outer(server.LookupTask)).Methods("POST")
	r.HandleFunc("/tasks/refresh", Outer(server.RefreshTasks)).Methods("POST")
	r.HandleFunc("/report/current", server.ServeCurrentReport).Methods("GET")
	r.HandleFunc("/health", Health).Methods("GET")
	return otelhttp.NewHandler(r, "einstein-api")
}

// NewServer wires a session whose reports are kept for the API.
func NewServer(session *Session) *Server {
	reports := &MemoryReporter{}
	session.Reporter = reports
	return &Server{Session: session, Reports: reports}
}

// RunServer serves the API on addr and keeps the task directory warm until ctx is done.
func RunServer(ctx context.Context, session *Session, addr string) error {
	server := NewServer(session)

	refreshCtx, stopRefresh := context.WithCancel(ctx)
	defer stopRefresh()
	go session.Tasks.RunRefresher(refreshCtx, session.Config.Freshness)

	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.MakeServer(),
	}

	serverErr := make(chan error, 1)
	go func() {
		telemetry.Log("API server starting", slog.LevelInfo, "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server startup failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}
	return nil
}
