package archive

import (
	"context"
)

// Manager stores rendered reports so they can be looked at after the view is closed.
type Manager interface {
	PutFile(ctx context.Context, bucket string, name string, data []byte) error
	LoadFile(ctx context.Context, bucket string, name string) ([]byte, error)
}

// ObjectName is where a report for one upload is kept.
func ObjectName(module, task, uploadID string) string {
	return module + "/" + task + "/" + uploadID + ".txt"
}
