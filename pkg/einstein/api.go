package einstein

import (
	"context"
	"time"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
)

type LoginQuery struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message string `json:"message"`
}

func (s *Server) Login(ctx context.Context, q LoginQuery) (r LoginResponse, err error) {
	_, err = s.Session.Credentials.Authenticate(ctx, AnswerPrompter{"username": q.Username, "password": q.Password})
	if err != nil {
		return
	}
	r.Message = "Authenticated. Einstein is now running."
	return
}

type LogoutQuery struct{}

type LogoutResponse struct{}

func (s *Server) Logout(ctx context.Context, q LogoutQuery) (r LogoutResponse, err error) {
	err = s.Session.Logout(ctx)
	return
}

type UploadQuery struct {
	Path   string `json:"path"`
	Module string `json:"module"`
}

type UploadResponse struct {
	Report *bridge.Report `json:"report"`
	Lines  []string       `json:"lines"`
}

func (s *Server) Upload(ctx context.Context, q UploadQuery) (r UploadResponse, err error) {
	if q.Path == "" {
		err = bridge.NewError(bridge.InvalidInput, "path is required", nil)
		return
	}
	if _, ok, _ := s.Session.Credentials.Get(ctx); !ok {
		err = bridge.NewError(bridge.Authentication, "Not logged in. POST /login first.", nil)
		return
	}
	report, err := s.Session.Upload(ctx, q.Path, AnswerPrompter{"module": q.Module})
	if err != nil {
		return
	}
	r.Report = report
	r.Lines = RenderReport(report)
	return
}

type LookupTaskQuery struct {
	Path string `json:"path"`
}

type LookupTaskResponse struct {
	Task bridge.Task `json:"task"`
}

func (s *Server) LookupTask(ctx context.Context, q LookupTaskQuery) (r LookupTaskResponse, err error) {
	if q.Path == "" {
		err = bridge.NewError(bridge.InvalidInput, "path is required", nil)
		return
	}
	r.Task, err = s.Session.LookupTask(ctx, q.Path)
	return
}

type RefreshTasksQuery struct{}

type RefreshTasksResponse struct {
	Tasks       int       `json:"tasks"`
	LastRefresh time.Time `json:"last_refresh"`
}

func (s *Server) RefreshTasks(ctx context.Context, q RefreshTasksQuery) (r RefreshTasksResponse, err error) {
	dir, err := s.Session.Tasks.Refresh(ctx, true)
	if err != nil {
		return
	}
	r.Tasks = len(dir)
	r.LastRefresh = s.Session.Tasks.LastRefresh()
	return
}
