package taskdir

import (
	"strings"
)

// Directory maps a task key to the modules offering that task.
// Every value is non-empty.
type Directory map[string][]string

// ParseManifest reads the `<taskKey> <moduleCode>+` manifest format.
// Blank lines and lines without module codes are dropped.
func ParseManifest(text string) Directory {
	dir := make(Directory)
	for _, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		dir[fields[0]] = fields[1:]
	}
	return dir
}

func (d Directory) Lookup(key string) []string {
	modules, ok := d[key]
	if !ok || len(modules) == 0 {
		return nil
	}
	return append([]string(nil), modules...)
}
