package einstein

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
	"github.com/carlosmiguelsoto/einstein/pkg/store"
)

type fakeUpload struct {
	Module  string
	Task    string
	Content string
	Creds   bridge.Credentials
}

type fakeBridge struct {
	mu sync.Mutex

	manifest      string
	manifestErr   error
	manifestCalls int

	probeErr error
	probes   []bridge.Credentials

	uploadBody string
	uploadErr  error
	uploadHook func(ctx context.Context, call int) error
	uploads    []fakeUpload

	detail      []bridge.TestResult
	detailErr   error
	detailCalls int
}

func (f *fakeBridge) Probe(ctx context.Context, creds bridge.Credentials) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes = append(f.probes, creds)
	return f.probeErr
}

func (f *fakeBridge) FetchManifest(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.manifestCalls++
	return f.manifest, f.manifestErr
}

func (f *fakeBridge) Upload(ctx context.Context, module bridge.ModuleCode, taskName string, content []byte, creds bridge.Credentials) (string, error) {
	f.mu.Lock()
	call := len(f.uploads) + 1
	f.uploads = append(f.uploads, fakeUpload{Module: module, Task: taskName, Content: string(content), Creds: creds})
	hook := f.uploadHook
	f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx, call); err != nil {
			return "", bridge.NewError(bridge.Upload, "Failed to upload file, Einstein may be down.", err)
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.uploadBody, f.uploadErr
}

func (f *fakeBridge) FetchFailureDetail(ctx context.Context, module bridge.ModuleCode, creds bridge.Credentials) ([]bridge.TestResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detailCalls++
	return f.detail, f.detailErr
}

func (f *fakeBridge) ReportURL(module bridge.ModuleCode) string {
	return "https://" + module + ".computing.dcu.ie/einstein/report.html"
}

func (f *fakeBridge) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

type recordingPrompter struct {
	mu      sync.Mutex
	answers map[string]string
	asked   []Prompt
}

func newPrompter(answers map[string]string) *recordingPrompter {
	return &recordingPrompter{answers: answers}
}

func (p *recordingPrompter) Prompt(ctx context.Context, q Prompt) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.asked = append(p.asked, q)
	return p.answers[q.Field], nil
}

func (p *recordingPrompter) fields() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	fields := make([]string, 0, len(p.asked))
	for _, q := range p.asked {
		fields = append(fields, q.Field)
	}
	return fields
}

type recordingView struct {
	lines  []string
	shown  bool
	closed bool
}

func (v *recordingView) AppendLine(line string) { v.lines = append(v.lines, line) }
func (v *recordingView) Show()                  { v.shown = true }
func (v *recordingView) Close()                 { v.closed = true }

type recordingReporter struct {
	views []*recordingView
}

func (r *recordingReporter) Open(title string) ReportView {
	v := &recordingView{}
	r.views = append(r.views, v)
	return v
}

type fakeArchive struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (a *fakeArchive) PutFile(ctx context.Context, bucket string, name string, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	if a.files == nil {
		a.files = map[string][]byte{}
	}
	a.files[bucket+"/"+name] = data
	return nil
}

func (a *fakeArchive) LoadFile(ctx context.Context, bucket string, name string) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.files[bucket+"/"+name], nil
}

var testCreds = bridge.Credentials{Username: "jdoe", Password: "secret"}

func testConfig() Config {
	return Config{
		Freshness:     15 * time.Minute,
		Modules:       DefaultModules,
		StrictModules: true,
		ArchiveBucket: "einstein-reports",
	}
}

// newTestSession returns a session over fb with files served from memory.
func newTestSession(t *testing.T, fb *fakeBridge, files map[string]string) (*Session, *recordingReporter, *store.MemoryKV) {
	t.Helper()
	kv := store.NewMemoryKV()
	reporter := &recordingReporter{}
	s := NewSession(testConfig(), fb, kv, reporter)
	s.ReadFile = func(name string) ([]byte, error) {
		content, ok := files[name]
		if !ok {
			return nil, &notFoundError{name}
		}
		return []byte(content), nil
	}
	return s, reporter, kv
}

type notFoundError struct{ name string }

func (e *notFoundError) Error() string { return "open " + e.name + ": no such file or directory" }

func loggedIn(t *testing.T, s *Session) {
	t.Helper()
	if err := s.Credentials.Save(context.Background(), testCreds); err != nil {
		t.Fatal(err)
	}
}
