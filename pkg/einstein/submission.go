package einstein

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/carlosmiguelsoto/einstein/pkg/archive"
	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
	"github.com/carlosmiguelsoto/einstein/pkg/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// failMarker in an upload response means at least one test did not pass.
const failMarker = "incorrect"

// Upload sends the file at path to the module it resolves to and shows the report.
// Starting an upload cancels any upload still in flight; a superseded upload
// returns ErrSuperseded and never touches the report view.
func (s *Session) Upload(ctx context.Context, path string, prompter Prompter) (report *bridge.Report, err error) {
	ctx, gen, done := s.begin(ctx)
	defer done()

	ctx, span := telemetry.StartSpan(ctx, "einstein.upload", attribute.String("einstein.path", path))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	creds, err := s.EnsureCredentials(ctx, prompter)
	if err != nil {
		return nil, s.settle(gen, err)
	}
	res, err := s.Resolve(ctx, path, prompter)
	if err != nil {
		return nil, s.settle(gen, err)
	}
	span.SetAttributes(attribute.String("einstein.task", res.Task), attribute.String("einstein.module", res.Module))

	content, err := s.ReadFile(path)
	if err != nil {
		return nil, s.settle(gen, bridge.NewError(bridge.InvalidInput, "Could not read "+path, err))
	}

	report, err = s.Submit(ctx, res, content, creds)
	if err != nil {
		return nil, s.settle(gen, err)
	}
	if !s.show(gen, report) {
		return nil, ErrSuperseded
	}
	s.archive(ctx, report)
	return report, nil
}

// Submit uploads content for an already resolved task and builds the report,
// fetching per-test detail when the submission failed.
func (s *Session) Submit(ctx context.Context, res Resolution, content []byte, creds bridge.Credentials) (*bridge.Report, error) {
	attrs := []attribute.KeyValue{attribute.String("module", res.Module)}
	s.Counters.Upload(ctx, attrs...)

	body, err := s.Bridge.Upload(ctx, res.Module, res.Task, content, creds)
	if err != nil {
		s.Counters.UploadFailed(ctx, attrs...)
		s.forgetIfRejected(ctx, err)
		return nil, err
	}

	report := &bridge.Report{
		ID:        uuid.NewString(),
		Task:      res.Task,
		Module:    res.Module,
		Body:      body,
		Passed:    !strings.Contains(body, failMarker),
		ReportURL: s.Bridge.ReportURL(res.Module),
	}
	telemetry.UpdateSpanValue(ctx, "einstein.report_id", report.ID)
	if report.Passed {
		return report, nil
	}

	s.Counters.UploadFailed(ctx, attrs...)
	results, err := s.Bridge.FetchFailureDetail(ctx, res.Module, creds)
	if err != nil {
		if !errors.Is(err, bridge.ErrDetailFetch) {
			err = bridge.NewError(bridge.DetailFetch, "Could not fetch results", err)
		}
		s.forgetIfRejected(ctx, err)
		telemetry.LogContext(ctx, err.Error(), slog.LevelWarn, "module", res.Module)
		report.DetailErr = err
		return report, nil
	}
	report.Results = results
	return report, nil
}

func (s *Session) begin(ctx context.Context) (context.Context, uint64, func()) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelPrev != nil {
		s.cancelPrev()
	}
	s.generation++
	s.cancelPrev = cancel
	return ctx, s.generation, cancel
}

// settle turns the error of a superseded upload into ErrSuperseded.
func (s *Session) settle(gen uint64, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return ErrSuperseded
	}
	return err
}

// show replaces the current report view, unless a newer upload has started.
func (s *Session) show(gen uint64, report *bridge.Report) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	if s.current != nil {
		s.current.Close()
		s.current = nil
	}
	if s.Reporter == nil {
		return true
	}
	view := s.Reporter.Open(ReportTitle)
	for _, line := range RenderReport(report) {
		view.AppendLine(line)
	}
	view.Show()
	s.current = view
	return true
}

func (s *Session) archive(ctx context.Context, report *bridge.Report) {
	if s.Archive == nil {
		return
	}
	data := []byte(strings.Join(RenderReport(report), "\n") + "\n")
	name := archive.ObjectName(report.Module, report.Task, report.ID)
	if err := s.Archive.PutFile(ctx, s.Config.ArchiveBucket, name, data); err != nil {
		telemetry.LogContext(ctx, "could not archive report: "+err.Error(), slog.LevelWarn, "object", name)
	}
}
