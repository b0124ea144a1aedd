// Package session holds the storefront's two bearer tokens: the user session
// issued at login and the wallet session issued when a wallet is linked. The
// two expire independently and a single backend endpoint may be guarded by
// either, so expiry handling has to know which one to drop.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type Kind string

const (
	KindUser   Kind = "user"
	KindWallet Kind = "wallet"
)

// Legacy flat files the tokens used to live in before they were merged into
// one structured record. Migrated once, then removed.
const (
	legacyUserTokenFile   = "token.txt"
	legacyWalletTokenFile = "wallet_token.txt"
)

type record struct {
	UserToken   string `json:"user_token,omitempty"`
	WalletToken string `json:"wallet_token,omitempty"`
}

// Store persists the token pair as a single JSON record. An OnExpire callback
// replaces any ambient redirect side effect so callers decide what an expired
// session means for them.
type Store struct {
	path string

	mu  sync.RWMutex
	rec record

	// OnExpire is invoked after a token is cleared via Expire. May be nil.
	OnExpire func(kind Kind)
}

func NewStore(path string) (*Store, error) {
	s := &Store{path: path}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("session: mkdir: %w", err)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &s.rec); err != nil {
			return nil, fmt.Errorf("session: parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		if err := s.migrateLegacy(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("session: read %s: %w", path, err)
	}

	return s, nil
}

// migrateLegacy folds the two flat legacy token files into the structured
// record. Runs only when the record does not exist yet.
func (s *Store) migrateLegacy() error {
	dir := filepath.Dir(s.path)
	migrated := false

	if data, err := os.ReadFile(filepath.Join(dir, legacyUserTokenFile)); err == nil {
		s.rec.UserToken = string(data)
		migrated = true
	}
	if data, err := os.ReadFile(filepath.Join(dir, legacyWalletTokenFile)); err == nil {
		s.rec.WalletToken = string(data)
		migrated = true
	}
	if !migrated {
		return nil
	}

	if err := s.flushLocked(); err != nil {
		return err
	}
	os.Remove(filepath.Join(dir, legacyUserTokenFile))
	os.Remove(filepath.Join(dir, legacyWalletTokenFile))
	log.Println("session: migrated legacy token files")
	return nil
}

func (s *Store) Token(kind Kind) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token := s.tokenLocked(kind)
	if token == "" {
		return ""
	}
	// Drop locally expired JWTs without a round trip.
	if expired(token) {
		return ""
	}
	return token
}

func (s *Store) tokenLocked(kind Kind) string {
	if kind == KindWallet {
		return s.rec.WalletToken
	}
	return s.rec.UserToken
}

func (s *Store) SetToken(kind Kind, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind == KindWallet {
		s.rec.WalletToken = token
	} else {
		s.rec.UserToken = token
	}
	return s.flushLocked()
}

// Expire clears one token and fires OnExpire. The other token is untouched.
func (s *Store) Expire(kind Kind) {
	s.mu.Lock()
	if kind == KindWallet {
		s.rec.WalletToken = ""
	} else {
		s.rec.UserToken = ""
	}
	if err := s.flushLocked(); err != nil {
		log.Printf("session: expire flush: %v", err)
	}
	callback := s.OnExpire
	s.mu.Unlock()

	if callback != nil {
		callback(kind)
	}
}

func (s *Store) HasUserSession() bool {
	return s.Token(KindUser) != ""
}

func (s *Store) flushLocked() error {
	data, err := json.Marshal(s.rec)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("session: write %s: %w", s.path, err)
	}
	return nil
}

// expired inspects a JWT's exp claim. Opaque tokens are assumed valid; the
// backend remains the authority either way.
func expired(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
