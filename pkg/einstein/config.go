package einstein

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/carlosmiguelsoto/einstein/pkg/archive"
	"github.com/carlosmiguelsoto/einstein/pkg/einsteinbridge"
	"github.com/carlosmiguelsoto/einstein/pkg/taskdir"
	"github.com/joho/godotenv"
)

// LoadConfig reads the EINSTEIN_* environment, after loading envFiles (or ./.env when
// none are given) into it. A missing default .env file is not an error.
func LoadConfig(envFiles ...string) (Config, error) {
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return Config{}, err
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	config := Config{
		Bridge: einsteinbridge.Config{
			ModuleURL:   os.Getenv("EINSTEIN_MODULE_URL"),
			ManifestURL: os.Getenv("EINSTEIN_MANIFEST_URL"),
			LivenessURL: os.Getenv("EINSTEIN_LIVENESS_URL"),
		},
		Freshness:          taskdir.DefaultWindow,
		Modules:            DefaultModules,
		StrictModules:      true,
		Storage:            StorageBackend(getenv("EINSTEIN_STORE", string(FileStorage))),
		StoragePath:        os.Getenv("EINSTEIN_STORE_PATH"),
		DbConnectionString: os.Getenv("EINSTEIN_DB_CONNECTION_STRING"),
		RedisAddr:          getenv("EINSTEIN_REDIS_ADDR", "localhost:6379"),
		RedisPassword:      os.Getenv("EINSTEIN_REDIS_PASSWORD"),
		Secret:             os.Getenv("EINSTEIN_SECRET"),
		ServerAddr:         getenv("EINSTEIN_SERVER_ADDR", "127.0.0.1:7346"),
		OTel:               getenv("EINSTEIN_OTEL", "off"),
		LogLevel:           getenv("EINSTEIN_LOG_LEVEL", "warn"),
		ArchiveBucket:      getenv("EINSTEIN_ARCHIVE_BUCKET", "einstein-reports"),
	}

	var err error
	if v := os.Getenv("EINSTEIN_FRESHNESS"); v != "" {
		if config.Freshness, err = time.ParseDuration(v); err != nil {
			return config, fmt.Errorf("EINSTEIN_FRESHNESS: %w", err)
		}
	}
	if v := os.Getenv("EINSTEIN_HTTP_TIMEOUT"); v != "" {
		if config.Bridge.Timeout, err = time.ParseDuration(v); err != nil {
			return config, fmt.Errorf("EINSTEIN_HTTP_TIMEOUT: %w", err)
		}
	}
	if v := os.Getenv("EINSTEIN_MODULES"); v != "" {
		config.Modules = strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' })
	}
	if v := os.Getenv("EINSTEIN_STRICT_MODULES"); v != "" {
		if config.StrictModules, err = strconv.ParseBool(v); err != nil {
			return config, fmt.Errorf("EINSTEIN_STRICT_MODULES: %w", err)
		}
	}
	if v := os.Getenv("EINSTEIN_REDIS_DB"); v != "" {
		if config.RedisDB, err = strconv.Atoi(v); err != nil {
			return config, fmt.Errorf("EINSTEIN_REDIS_DB: %w", err)
		}
	}
	if config.StoragePath == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			dir = "."
		}
		config.StoragePath = filepath.Join(dir, "einstein", "credentials.env")
	}
	if endpoint := os.Getenv("EINSTEIN_MINIO_ENDPOINT"); endpoint != "" {
		useSSL, _ := strconv.ParseBool(os.Getenv("EINSTEIN_MINIO_USE_SSL"))
		config.Archive = &archive.MinioConfig{
			Endpoint:        endpoint,
			AccessKeyID:     os.Getenv("EINSTEIN_MINIO_ACCESS_KEY"),
			SecretAccessKey: os.Getenv("EINSTEIN_MINIO_SECRET_KEY"),
			UseSSL:          useSSL,
		}
	}

	switch config.Storage {
	case FileStorage, MemoryStorage, RedisStorage:
	case PostgresStorage:
		if config.DbConnectionString == "" {
			return config, fmt.Errorf("EINSTEIN_STORE=postgres requires EINSTEIN_DB_CONNECTION_STRING")
		}
	default:
		return config, fmt.Errorf("unknown EINSTEIN_STORE %q", config.Storage)
	}
	return config, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
