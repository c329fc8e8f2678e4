package store

import (
	"context"
	"encoding/base64"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

// EnvFileKV keeps values in a dotenv file, base64-encoded so that any bytes survive
// the round trip.
type EnvFileKV struct {
	path string
	mu   sync.Mutex
}

func NewEnvFileKV(path string) *EnvFileKV {
	return &EnvFileKV{path: path}
}

func (e *EnvFileKV) read() (map[string]string, error) {
	values, err := godotenv.Read(e.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	return values, err
}

func (e *EnvFileKV) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(e.path), 0o700); err != nil {
		return err
	}
	content, err := godotenv.Marshal(values)
	if err != nil {
		return err
	}
	return os.WriteFile(e.path, []byte(content+"\n"), 0o600)
}

func (e *EnvFileKV) Get(ctx context.Context, key string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	values, err := e.read()
	if err != nil {
		return nil, err
	}
	encoded, ok := values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return base64.StdEncoding.DecodeString(encoded)
}

func (e *EnvFileKV) Put(ctx context.Context, key string, value []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	values, err := e.read()
	if err != nil {
		return err
	}
	values[key] = base64.StdEncoding.EncodeToString(value)
	return e.write(values)
}

func (e *EnvFileKV) Delete(ctx context.Context, key string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	values, err := e.read()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return e.write(values)
}

func (e *EnvFileKV) Close() error {
	return nil
}
