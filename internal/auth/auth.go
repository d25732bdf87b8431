// Package auth stores the LiveDNS API key in the OS keychain.
package auth

import (
	"errors"

	"github.com/zalando/go-keyring"
)

const (
	// ServiceName is the keychain service entries are stored under.
	ServiceName = "livedns-manager"
	account     = "api_key"
)

// ErrKeyNotFound is returned when no API key has been stored.
var ErrKeyNotFound = errors.New("api key not found")

// Store persists a single API key.
type Store interface {
	SetKey(key string) error
	GetKey() (string, error)
	DeleteKey() error
}

// KeyringStore is a Store backed by the OS keychain.
type KeyringStore struct {
	serviceName string
}

// DefaultStore returns the standard store backed by the OS keychain.
func DefaultStore() *KeyringStore {
	return NewKeyringStore(ServiceName)
}

func NewKeyringStore(serviceName string) *KeyringStore {
	if serviceName == "" {
		serviceName = ServiceName
	}
	return &KeyringStore{serviceName: serviceName}
}

func (k *KeyringStore) SetKey(key string) error {
	if key == "" {
		return errors.New("api key cannot be empty")
	}
	return keyring.Set(k.serviceName, account, key)
}

func (k *KeyringStore) GetKey() (string, error) {
	key, err := keyring.Get(k.serviceName, account)
	if err == nil {
		return key, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrKeyNotFound
	}
	return "", err
}

func (k *KeyringStore) DeleteKey() error {
	err := keyring.Delete(k.serviceName, account)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrKeyNotFound
	}
	return err
}
