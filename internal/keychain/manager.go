// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package keychain stores the database connection string in the OS credential store.
// It wraps 99designs/keyring with the native backend of each platform: macOS Keychain,
// Windows Credential Manager, and Secret Service, KWallet or pass on Linux.
//
// A single process-wide Manager is opened lazily; opening may prompt the user, so
// callers only reach for it when no other DSN source is configured.
package keychain

import (
	"errors"
	"runtime"
	"sync"

	"github.com/99designs/keyring"
)

// Global keychain manager instance
var (
	globalManager *Manager
	mu            sync.Mutex
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "sqlrun"

// KeyDSN is the item key under which the connection string is stored.
const KeyDSN = "db_dsn"

// ErrNotFound is returned when no connection string has been stored.
var ErrNotFound = errors.New("no connection string stored in keychain")

// Manager provides thread-safe access to the stored connection string.
type Manager struct {
	mu   sync.RWMutex
	ring keyring.Keyring
}

// NewManager opens the OS keyring.
func NewManager() (*Manager, error) {
	ring, err := openRing()
	if err != nil {
		return nil, err
	}
	return NewManagerWithRing(ring), nil
}

// NewManagerWithRing wraps an already opened keyring.
func NewManagerWithRing(ring keyring.Keyring) *Manager {
	return &Manager{ring: ring}
}

// GetManager returns the global keychain manager instance.
// If not initialized, it will be created on first call.
// If initialization fails, it will retry on subsequent calls.
func GetManager() (*Manager, error) {
	mu.Lock()
	defer mu.Unlock()

	if globalManager != nil {
		return globalManager, nil
	}

	m, err := NewManager()
	if err != nil {
		return nil, err
	}
	globalManager = m
	return globalManager, nil
}

// backends lists the native credential stores tried on each platform, in order.
func backends(goos string) []keyring.BackendType {
	switch goos {
	case "darwin":
		// pass is the fallback when Keychain access is denied to unsigned binaries
		return []keyring.BackendType{keyring.KeychainBackend, keyring.PassBackend}
	case "windows":
		return []keyring.BackendType{keyring.WinCredBackend}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []keyring.BackendType{keyring.SecretServiceBackend, keyring.KWalletBackend, keyring.PassBackend}
	default:
		return nil
	}
}

// openRing opens the OS keyring using native platform backends only; there is no
// encrypted-file fallback.
func openRing() (keyring.Keyring, error) {
	allowed := backends(runtime.GOOS)
	if len(allowed) == 0 {
		return nil, errors.New("secure storage not supported on " + runtime.GOOS)
	}

	cfg := keyring.Config{
		ServiceName:              ServiceName,
		AllowedBackends:          allowed,
		PassPrefix:               ServiceName,
		WinCredPrefix:            ServiceName,
		KeychainTrustApplication: true,
		LibSecretCollectionName:  "login",
	}

	ring, err := keyring.Open(cfg)
	if err != nil {
		if runtime.GOOS == "darwin" {
			return nil, errors.New("macOS Keychain unavailable; install 'pass' as a fallback: brew install pass gnupg && gpg --generate-key && pass init <gpg-key-id>")
		}
		return nil, err
	}
	return ring, nil
}

// SaveDSN stores the connection string in the keychain.
// This method is thread-safe.
func (m *Manager) SaveDSN(dsn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ring.Set(keyring.Item{
		Key:         KeyDSN,
		Data:        []byte(dsn),
		Label:       "sqlrun database connection",
		Description: "PostgreSQL connection string used by sqlrun",
	})
}

// LoadDSN retrieves the connection string from the keychain.
// It returns ErrNotFound when nothing is stored.
// This method is thread-safe.
func (m *Manager) LoadDSN() (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, err := m.ring.Get(KeyDSN)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if len(it.Data) == 0 {
		return "", ErrNotFound
	}
	return string(it.Data), nil
}

// ClearDSN removes the stored connection string. Removing a missing item is not an error.
// This method is thread-safe.
func (m *Manager) ClearDSN() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := m.ring.Remove(KeyDSN)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return err
	}
	return nil
}

// Lookup loads the stored connection string through the global manager.
// It fits dsn.Sources.Keychain.
func Lookup() (string, error) {
	m, err := GetManager()
	if err != nil {
		return "", err
	}
	return m.LoadDSN()
}
