package einstein

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/carlosmiguelsoto/einstein/pkg/bridge"
	"github.com/carlosmiguelsoto/einstein/pkg/store"
	"github.com/carlosmiguelsoto/einstein/pkg/telemetry"
)

type Prober interface {
	Probe(ctx context.Context, creds bridge.Credentials) error
}

// CredentialStore keeps the username and password in memory, backed by KV.
type CredentialStore struct {
	KV     store.KV
	Key    string
	Prober Prober

	mu     sync.Mutex
	cached *bridge.Credentials
}

func NewCredentialStore(kv store.KV, prober Prober) *CredentialStore {
	return &CredentialStore{KV: kv, Key: AuthKey, Prober: prober}
}

// Get returns the credentials held in memory, loading them from storage the first time.
func (c *CredentialStore) Get(ctx context.Context) (creds bridge.Credentials, ok bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cached != nil {
		return *c.cached, true, nil
	}
	data, err := c.KV.Get(ctx, c.Key)
	if errors.Is(err, store.ErrNotFound) {
		return creds, false, nil
	}
	if err != nil {
		return
	}
	if err = json.Unmarshal(data, &creds); err != nil {
		return
	}
	if creds.Empty() {
		return bridge.Credentials{}, false, nil
	}
	c.cached = &creds
	return creds, true, nil
}

func (c *CredentialStore) Save(ctx context.Context, creds bridge.Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = &creds
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return c.KV.Put(ctx, c.Key, data)
}

func (c *CredentialStore) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cached = nil
	return c.KV.Delete(ctx, c.Key)
}

// Authenticate asks for a username and password, checks them against the
// liveness endpoint and keeps them on success.
func (c *CredentialStore) Authenticate(ctx context.Context, prompter Prompter) (bridge.Credentials, error) {
	username, err := prompter.Prompt(ctx, Prompt{Field: "username", Text: "SoC Username"})
	if err != nil {
		return bridge.Credentials{}, err
	}
	password, err := prompter.Prompt(ctx, Prompt{Field: "password", Text: "SoC Password", Secret: true})
	if err != nil {
		return bridge.Credentials{}, err
	}
	creds := bridge.Credentials{Username: strings.TrimSpace(username), Password: password}
	if creds.Empty() {
		return bridge.Credentials{}, bridge.NewError(bridge.InvalidInput, "Invalid username or password entered.", nil)
	}

	if err := c.Prober.Probe(ctx, creds); err != nil {
		if !errors.Is(err, bridge.ErrAuthentication) {
			err = bridge.NewError(bridge.Authentication, "Failed to authenticate. Invalid username or password.", err)
		}
		return bridge.Credentials{}, err
	}

	if err := c.Save(ctx, creds); err != nil {
		telemetry.LogContext(ctx, "could not persist credentials: "+err.Error(), slog.LevelWarn)
	}
	return creds, nil
}

// Login authenticates, retrying once when no username or password was given.
func (s *Session) Login(ctx context.Context, prompter Prompter) (creds bridge.Credentials, err error) {
	for attempt := 1; attempt <= MaxAuthAttempts; attempt++ {
		creds, err = s.Credentials.Authenticate(ctx, prompter)
		if err == nil || !errors.Is(err, bridge.ErrInvalidInput) {
			return
		}
		telemetry.LogContext(ctx, err.Error(), slog.LevelWarn, "attempt", attempt)
	}
	return
}

// EnsureCredentials returns the stored credentials or logs the user in.
func (s *Session) EnsureCredentials(ctx context.Context, prompter Prompter) (bridge.Credentials, error) {
	creds, ok, err := s.Credentials.Get(ctx)
	if err != nil {
		telemetry.LogContext(ctx, "stored credentials unreadable, authenticating again: "+err.Error(), slog.LevelWarn)
	}
	if ok {
		return creds, nil
	}
	return s.Login(ctx, prompter)
}

func (s *Session) Logout(ctx context.Context) error {
	return s.Credentials.Invalidate(ctx)
}

// forgetIfRejected drops the credentials when the service refused them.
func (s *Session) forgetIfRejected(ctx context.Context, err error) {
	var e *bridge.Error
	if errors.As(err, &e) && e.Rejected() {
		if err := s.Credentials.Invalidate(ctx); err != nil {
			telemetry.LogContext(ctx, "could not forget rejected credentials: "+err.Error(), slog.LevelWarn)
		}
	}
}
