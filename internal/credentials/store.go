package credentials

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang.org/x/crypto/blake2b"
)

// TokenBytes is the amount of randomness behind every token (256 bits).
const TokenBytes = 32

var ErrInvalidCredential = errors.New("invalid credential")

// Store issues bearer tokens and maps them back to device ids.
// Tokens are indexed by their BLAKE2b-256 digest; the raw token is only returned once, at issue time.
type Store struct {
	mu      sync.RWMutex
	byToken map[[blake2b.Size256]byte]string
	entropy io.Reader
}

// New returns an empty store reading randomness from crypto/rand.
func New() *Store {
	return NewWithEntropy(rand.Reader)
}

// NewWithEntropy lets tests substitute the randomness source.
func NewWithEntropy(entropy io.Reader) *Store {
	return &Store{
		byToken: make(map[[blake2b.Size256]byte]string),
		entropy: entropy,
	}
}

// Issue mints a fresh token bound to deviceID.
func (s *Store) Issue(deviceID string) (string, error) {
	if deviceID == "" {
		return "", errors.New("issue token: empty device id")
	}

	buf := make([]byte, TokenBytes)
	if _, err := io.ReadFull(s.entropy, buf); err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	token := hex.EncodeToString(buf)
	key := digest(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byToken[key]; exists {
		return "", errors.New("issue token: collision with an existing token")
	}
	s.byToken[key] = deviceID
	return token, nil
}

// Resolve returns the device id a token was issued for.
func (s *Store) Resolve(token string) (string, error) {
	if token == "" {
		return "", ErrInvalidCredential
	}
	key := digest(token)

	s.mu.RLock()
	defer s.mu.RUnlock()

	deviceID, ok := s.byToken[key]
	if !ok {
		return "", ErrInvalidCredential
	}
	return deviceID, nil
}

// Discard unbinds a token minted during a registration that was rolled back.
func (s *Store) Discard(token string) {
	key := digest(token)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byToken, key)
}

func digest(token string) [blake2b.Size256]byte {
	return blake2b.Sum256([]byte(token))
}
