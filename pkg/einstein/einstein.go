package einstein

import (
	"context"
	"log/slog"
	"os"
	"sync"

	"github.com/carlosmiguelsoto/einstein/pkg/archive"
	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
	"github.com/carlosmiguelsoto/einstein/pkg/einsteinbridge"
	"github.com/carlosmiguelsoto/einstein/pkg/store"
	"github.com/carlosmiguelsoto/einstein/pkg/taskdir"
	"github.com/carlosmiguelsoto/einstein/pkg/telemetry"
	"github.com/redis/go-redis/v9"
)

// Session holds everything one user's uploads share: credentials, the task
// directory and the currently displayed report.
type Session struct {
	Config      Config
	Bridge      bridge.Bridge
	Tasks       *taskdir.Cache
	Credentials *CredentialStore
	Reporter    Reporter
	Archive     archive.Manager
	Counters    *telemetry.Counters
	ReadFile    func(name string) ([]byte, error)

	mu         sync.Mutex
	current    ReportView
	generation uint64
	cancelPrev context.CancelFunc
}

func NewSession(config Config, b bridge.Bridge, kv store.KV, reporter Reporter) *Session {
	counters := telemetry.NewCounters()
	tasks := taskdir.NewCache(b, config.Freshness)
	tasks.Counters = counters
	if len(config.Modules) == 0 {
		config.Modules = DefaultModules
	}
	return &Session{
		Config:      config,
		Bridge:      b,
		Tasks:       tasks,
		Credentials: NewCredentialStore(kv, b),
		Reporter:    reporter,
		Counters:    counters,
		ReadFile:    os.ReadFile,
	}
}

// Open builds a session from config: the HTTP bridge, the configured storage
// backend and, when configured, the report archive.
func Open(ctx context.Context, config Config, reporter Reporter) (*Session, error) {
	kv, err := OpenStorage(ctx, config)
	if err != nil {
		return nil, err
	}
	session := NewSession(config, einsteinbridge.CreateEinsteinBridge(config.Bridge), kv, reporter)
	if config.Archive != nil {
		manager, err := archive.NewMinioManagerFromConfig(*config.Archive)
		if err != nil {
			kv.Close()
			return nil, err
		}
		session.Archive = manager
	}
	return session, nil
}

func OpenStorage(ctx context.Context, config Config) (kv store.KV, err error) {
	switch config.Storage {
	case PostgresStorage:
		kv, err = store.NewPostgresKV(ctx, config.DbConnectionString)
	case RedisStorage:
		client := redis.NewClient(&redis.Options{
			Addr:     config.RedisAddr,
			Password: config.RedisPassword,
			DB:       config.RedisDB,
		})
		if err = client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, err
		}
		kv = store.NewRedisKV(client)
	case MemoryStorage:
		kv = store.NewMemoryKV()
	default:
		kv = store.NewEnvFileKV(config.StoragePath)
	}
	if err != nil {
		return nil, err
	}
	if config.Secret != "" {
		kv = store.NewSealedKV(kv, config.Secret)
	}
	telemetry.Log("storage opened", slog.LevelDebug, "backend", string(config.Storage))
	return kv, nil
}

func (s *Session) Close() error {
	s.mu.Lock()
	if s.cancelPrev != nil {
		s.cancelPrev()
		s.cancelPrev = nil
	}
	if s.current != nil {
		s.current.Close()
		s.current = nil
	}
	s.mu.Unlock()
	return s.Credentials.KV.Close()
}
