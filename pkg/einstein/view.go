package einstein

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// WriterReporter prints each report to Out when it is shown.
type WriterReporter struct {
	Out io.Writer
}

func (w *WriterReporter) Open(title string) ReportView {
	return &writerView{out: w.Out}
}

type writerView struct {
	out   io.Writer
	lines []string
}

func (v *writerView) AppendLine(line string) {
	v.lines = append(v.lines, line)
}

func (v *writerView) Show() {
	fmt.Fprintln(v.out, strings.Join(v.lines, "\n"))
}

func (v *writerView) Close() {}

// MemoryReporter keeps the latest report so it can be served over the local API.
type MemoryReporter struct {
	mu      sync.Mutex
	current *memoryView
}

func (m *MemoryReporter) Open(title string) ReportView {
	return &memoryView{owner: m, title: title}
}

// Current returns the title and lines of the live report, if there is one.
func (m *MemoryReporter) Current() (title string, lines []string, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return "", nil, false
	}
	return m.current.title, append([]string(nil), m.current.lines...), true
}

type memoryView struct {
	owner *MemoryReporter
	title string
	lines []string
}

func (v *memoryView) AppendLine(line string) {
	v.lines = append(v.lines, line)
}

func (v *memoryView) Show() {
	v.owner.mu.Lock()
	defer v.owner.mu.Unlock()
	v.owner.current = v
}

func (v *memoryView) Close() {
	v.owner.mu.Lock()
	defer v.owner.mu.Unlock()
	if v.owner.current == v {
		v.owner.current = nil
	}
}
