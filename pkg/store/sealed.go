package store

import (
	"context"
	"crypto/rand"
	"errors"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const nonceSize = 24

var ErrCorrupt = errors.New("store: sealed value could not be opened")

// SealedKV encrypts values with NaCl secretbox before handing them to the wrapped KV.
type SealedKV struct {
	kv  KV
	key [32]byte
}

// NewSealedKV derives the box key from secret with Argon2id.
func NewSealedKV(kv KV, secret string) *SealedKV {
	s := &SealedKV{kv: kv}
	derived := argon2.IDKey([]byte(secret), []byte("einstein-credentials"), 1, 64*1024, 4, 32)
	copy(s.key[:], derived)
	return s
}

func (s *SealedKV) Get(ctx context.Context, key string) ([]byte, error) {
	sealed, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(sealed) < nonceSize {
		return nil, ErrCorrupt
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	opened, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &s.key)
	if !ok {
		return nil, ErrCorrupt
	}
	return opened, nil
}

func (s *SealedKV) Put(ctx context.Context, key string, value []byte) error {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return err
	}
	sealed := secretbox.Seal(nonce[:], value, &nonce, &s.key)
	return s.kv.Put(ctx, key, sealed)
}

func (s *SealedKV) Delete(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, key)
}

func (s *SealedKV) Close() error {
	return s.kv.Close()
}
