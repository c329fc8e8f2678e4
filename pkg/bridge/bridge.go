package bridge

import "context"

type ModuleCode = string

type Credentials struct {
	Username string `json:"USERNAME"`
	Password string `json:"PASSWORD"`
}

func (c Credentials) Empty() bool {
	return c.Username == "" || c.Password == ""
}

// Bridge is the remote grading service as seen by the client.
type Bridge interface {
	// Probe checks the credentials against the liveness endpoint.
	Probe(ctx context.Context, creds Credentials) error
	FetchManifest(ctx context.Context) (string, error)
	Upload(ctx context.Context, module ModuleCode, taskName string, content []byte, creds Credentials) (string, error)
	FetchFailureDetail(ctx context.Context, module ModuleCode, creds Credentials) ([]TestResult, error)
	ReportURL(module ModuleCode) string
}
