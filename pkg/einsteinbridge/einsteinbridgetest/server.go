// Package einsteinbridgetest runs a fake Einstein service for tests.
package einsteinbridgetest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
	"github.com/carlosmiguelsoto/einstein/pkg/einsteinbridge"
	"github.com/gorilla/mux"
)

type Upload struct {
	Module      string
	Filename    string
	ContentType string
	Content     string
	Username    string
}

type Server struct {
	*httptest.Server

	mu             sync.Mutex
	Manifest       string
	ManifestStatus int
	Username       string
	Password       string
	UploadBody     string
	UploadStatus   int
	Detail         string
	DetailStatus   int

	Uploads       []Upload
	ManifestCalls int
	DetailCalls   int
	LivenessCalls int
}

func NewServer() *Server {
	s := &Server{
		Username:       "jdoe",
		Password:       "secret",
		ManifestStatus: http.StatusOK,
		UploadStatus:   http.StatusOK,
		DetailStatus:   http.StatusOK,
	}
	r := mux.NewRouter()
	r.HandleFunc("/termcast/tasks.txt", s.manifest).Methods("GET")
	r.HandleFunc("/ca000/einstein/now", s.liveness).Methods("GET")
	r.HandleFunc("/{module}/einstein/upload", s.upload).Methods("POST")
	r.HandleFunc("/{module}/einstein/get-report", s.detail).Methods("GET")
	s.Server = httptest.NewServer(r)
	return s
}

// Config points a bridge at this server.
func (s *Server) Config() einsteinbridge.Config {
	return einsteinbridge.Config{
		ModuleURL:   s.URL + "/{module}/einstein",
		ManifestURL: s.URL + "/termcast/tasks.txt",
		LivenessURL: s.URL + "/ca000/einstein/now",
	}
}

func (s *Server) Set(fn func(s *Server)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (s *Server) Snapshot() (uploads []Upload, manifestCalls, detailCalls int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.Uploads...), s.ManifestCalls, s.DetailCalls
}

func (s *Server) authorized(r *http.Request) bool {
	user, pass, ok := r.BasicAuth()
	return ok && user == s.Username && pass == s.Password
}

func (s *Server) manifest(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ManifestCalls++
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(s.ManifestStatus)
	io.WriteString(w, s.Manifest)
}

func (s *Server) liveness(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LivenessCalls++
	if !s.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	io.WriteString(w, "2024-01-01 12:00:00")
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer file.Close()
	content, _ := io.ReadAll(file)
	user, _, _ := r.BasicAuth()
	s.Uploads = append(s.Uploads, Upload{
		Module:      mux.Vars(r)["module"],
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Content:     string(content),
		Username:    user,
	})
	w.WriteHeader(s.UploadStatus)
	io.WriteString(w, s.UploadBody)
}

func (s *Server) detail(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DetailCalls++
	if !s.authorized(r) {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if _, ok := r.URL.Query()["select-first-failed-test"]; !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.DetailStatus)
	io.WriteString(w, s.Detail)
}

// DetailJSON encodes results the way the service does.
func DetailJSON(results ...bridge.TestResult) string {
	data, _ := json.Marshal(bridge.FailureDetail{Results: results})
	return string(data)
}
