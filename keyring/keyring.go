// Package keyring stores the completion API key in the operating
// system's credential store.
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const ServiceName = "ticketsmith"

// APIKeyName is the credential slot used for the completion API key.
const APIKeyName = "api-key"

type ErrSecretNotFound struct {
	Key string
	Err error
}

func (e *ErrSecretNotFound) Error() string {
	return fmt.Sprintf("secret %q not found: %s", e.Key, e.Err)
}

func (e *ErrSecretNotFound) Is(target error) bool {
	_, ok := target.(*ErrSecretNotFound)
	return ok
}

func (e *ErrSecretNotFound) Unwrap() error {
	return e.Err
}

type Provider interface {
	Get(key string) (string, error)
	Set(key string, value string) error
	Delete(key string) error
}

// SystemProvider backs Provider with the OS keyring.
type SystemProvider struct {
	service string
}

func NewSystemProvider() *SystemProvider {
	return &SystemProvider{service: ServiceName}
}

func (p *SystemProvider) Get(key string) (string, error) {
	secret, err := keyring.Get(p.service, key)
	if err != nil {
		return "", toError(key, err)
	}
	return secret, nil
}

func (p *SystemProvider) Set(key string, value string) error {
	if err := keyring.Set(p.service, key, value); err != nil {
		return fmt.Errorf("store secret %q: %w", key, err)
	}
	return nil
}

func (p *SystemProvider) Delete(key string) error {
	if err := keyring.Delete(p.service, key); err != nil {
		return toError(key, err)
	}
	return nil
}

func toError(key string, err error) error {
	if errors.Is(err, keyring.ErrNotFound) {
		return &ErrSecretNotFound{Key: key, Err: err}
	}
	return err
}

// MemoryProvider is an in-process Provider for tests and for platforms
// without a usable credential store.
type MemoryProvider struct {
	secrets map[string]string
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{secrets: make(map[string]string)}
}

func (p *MemoryProvider) Get(key string) (string, error) {
	secret, ok := p.secrets[key]
	if !ok {
		return "", &ErrSecretNotFound{Key: key, Err: keyring.ErrNotFound}
	}
	return secret, nil
}

func (p *MemoryProvider) Set(key string, value string) error {
	p.secrets[key] = value
	return nil
}

func (p *MemoryProvider) Delete(key string) error {
	if _, ok := p.secrets[key]; !ok {
		return &ErrSecretNotFound{Key: key, Err: keyring.ErrNotFound}
	}
	delete(p.secrets, key)
	return nil
}
