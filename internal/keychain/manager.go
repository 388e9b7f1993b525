// Copyright (c) 2025 Specforge
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain provides centralized, thread-safe keychain operations for specforge.
// It stores provider API keys in the OS credential store so they never land in the
// plain config file.
//
// On macOS the native `security` command is preferred; other platforms go through
// the keyring library with native backends only.
package keychain

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
	"go.uber.org/zap"
)

var (
	globalManager *Manager
	globalError   error
	mu            sync.Mutex
)

// ErrNotFound is returned when no secret is stored under a key.
var ErrNotFound = errors.New("key not found")

// Manager provides centralized, thread-safe operations for the OS keychain.
type Manager struct {
	mu      sync.RWMutex
	ring    keyring.Keyring
	backend keychainBackend
	logger  *zap.Logger
}

// keychainBackend defines the interface for keychain operations.
type keychainBackend interface {
	Set(key, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "specforge"

// Keys used for storing provider credentials in the OS keychain.
const (
	KeyAnthropicAPIKey = "anthropic_api_key"
	KeyOpenAIAPIKey    = "openai_api_key"
	KeyCursorAPIKey    = "cursor_api_key"
)

// AllKeys lists every key this package manages.
var AllKeys = []string{KeyAnthropicAPIKey, KeyOpenAIAPIKey, KeyCursorAPIKey}

// NewManager creates a new keychain manager with the OS keyring initialized.
// A nil logger discards debug output.
func NewManager(logger *zap.Logger) (*Manager, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("keychain")

	if runtime.GOOS == "darwin" {
		backend, err := newSecurityBackend(logger)
		if err == nil {
			return &Manager{backend: backend, logger: logger}, nil
		}
		logger.Debug("security command unavailable, using keyring", zap.Error(err))
	}

	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return &Manager{ring: ring, logger: logger}, nil
}

// newManagerWithBackend is used by tests to run the manager over an in-memory store.
func newManagerWithBackend(b keychainBackend, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{backend: b, logger: logger}
}

// GetManager returns the global keychain manager instance. The logger of the first
// successful call is kept. If initialization fails, it will retry on subsequent calls.
func GetManager(logger *zap.Logger) (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	globalManager, globalError = NewManager(logger)
	if globalError != nil {
		return nil, globalError
	}
	return globalManager, nil
}

// openRing opens the OS keyring using native platform backends only. There is no
// file fallback: an encrypted file with a fixed passphrase would not protect anything.
func openRing() (keyring.Keyring, error) {
	var allowed []keyring.BackendType
	switch runtime.GOOS {
	case "darwin":
		// pass covers macOS releases where the Keychain API refuses unsigned binaries
		allowed = []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		allowed = []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd":
		allowed = []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil, fmt.Errorf("secure storage not supported on %s", runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:             ServiceName,
		AllowedBackends:         allowed,
		PassPrefix:              ServiceName,
		WinCredPrefix:           ServiceName,
		LibSecretCollectionName: ServiceName,
		KWalletAppID:            ServiceName,
		KWalletFolder:           ServiceName,
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable. On macOS 26.0+, install 'pass': brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// Set stores value under key.
func (m *Manager) Set(key, value string) error {
	if value == "" {
		return errors.New("refusing to store an empty secret")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Debug("set", zap.String("key", key), zap.Int("bytes", len(value)))
	if m.backend != nil {
		return m.backend.Set(key, value)
	}
	return m.ring.Set(keyring.Item{Key: key, Data: []byte(value), Label: ServiceName + " " + key})
}

// Get returns the secret stored under key, or ErrNotFound.
func (m *Manager) Get(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var value string
	if m.backend != nil {
		v, err := m.backend.Get(key)
		if err != nil {
			return "", err
		}
		value = v
	} else {
		it, err := m.ring.Get(key)
		if err != nil {
			if errors.Is(err, keyring.ErrKeyNotFound) {
				m.logger.Debug("get", zap.String("key", key), zap.Bool("found", false))
				return "", ErrNotFound
			}
			return "", err
		}
		value = string(it.Data)
	}
	if value == "" {
		m.logger.Debug("get", zap.String("key", key), zap.Bool("found", false))
		return "", ErrNotFound
	}
	m.logger.Debug("get", zap.String("key", key), zap.Bool("found", true), zap.Int("bytes", len(value)))
	return value, nil
}

// Delete removes key. Missing keys are not an error.
func (m *Manager) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logger.Debug("delete", zap.String("key", key))
	if m.backend != nil {
		return m.backend.Delete(key)
	}
	if err := m.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// ClearAll removes every provider credential from the keychain.
func (m *Manager) ClearAll() error {
	var errs []error
	for _, k := range AllKeys {
		if err := m.Delete(k); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}
