package einstein

import (
	"context"
	"errors"
	"time"

	"github.com/carlosmiguelsoto/einstein/pkg/archive"
	"github.com/carlosmiguelsoto/einstein/pkg/einsteinbridge"
)

const (
	// AuthKey is where the credentials are persisted.
	AuthKey = "EINSTEIN_AUTH"

	// MaxAuthAttempts bounds the retry on empty username or password.
	MaxAuthAttempts = 2
)

var DefaultModules = []string{
	"ca114", "ca116", "ca117", "ca146", "ca167", "ca170", "ca5980", "ca177",
	"ca216", "ca282", "ca284", "ca247", "ca277", "ca297", "ca267", "ca644", "be115",
}

var ErrSuperseded = errors.New("upload superseded by a newer upload")

type StorageBackend string

const (
	FileStorage     StorageBackend = "file"
	PostgresStorage StorageBackend = "postgres"
	RedisStorage    StorageBackend = "redis"
	MemoryStorage   StorageBackend = "memory"
)

type Config struct {
	Bridge        einsteinbridge.Config
	Freshness     time.Duration
	Modules       []string
	StrictModules bool

	Storage            StorageBackend
	StoragePath        string
	DbConnectionString string
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	Secret             string

	ServerAddr string
	OTel       string
	LogLevel   string

	Archive       *archive.MinioConfig
	ArchiveBucket string
}

type Prompt struct {
	// Field names what is asked for: "username", "password" or "module".
	Field   string
	Text    string
	Secret  bool
	Choices []string
}

// Prompter asks the user for a single value. An empty answer means the user gave none.
type Prompter interface {
	Prompt(ctx context.Context, p Prompt) (string, error)
}

// Reporter opens a view a report is written to. Only one view is live at a time.
type Reporter interface {
	Open(title string) ReportView
}

type ReportView interface {
	AppendLine(line string)
	Show()
	Close()
}
