package cmd

import (
	"context"

	"github.com/spf13/afero"

	"github.com/ticketsmith/ticketsmith/keyring"
	"github.com/ticketsmith/ticketsmith/model"
)

// The real filesystem, OS keyring and provider constructors are the
// defaults; tests swap them through the command context.

type contextKey int

const (
	contextKeyFileSystem contextKey = iota
	contextKeyKeyring
	contextKeyProviderFactory
)

type ProviderFactory func(kind model.ProviderKind, apiKey string, opts ...model.Option) (model.Provider, error)

func WithFileSystem(ctx context.Context, fs *afero.Afero) context.Context {
	return context.WithValue(ctx, contextKeyFileSystem, fs)
}

func getFileSystem(ctx context.Context) *afero.Afero {
	if fs, ok := ctx.Value(contextKeyFileSystem).(*afero.Afero); ok {
		return fs
	}
	return &afero.Afero{Fs: afero.NewOsFs()}
}

func WithKeyring(ctx context.Context, provider keyring.Provider) context.Context {
	return context.WithValue(ctx, contextKeyKeyring, provider)
}

func getKeyring(ctx context.Context) keyring.Provider {
	if provider, ok := ctx.Value(contextKeyKeyring).(keyring.Provider); ok {
		return provider
	}
	return keyring.NewSystemProvider()
}

func WithProviderFactory(ctx context.Context, factory ProviderFactory) context.Context {
	return context.WithValue(ctx, contextKeyProviderFactory, factory)
}

func getProviderFactory(ctx context.Context) ProviderFactory {
	if factory, ok := ctx.Value(contextKeyProviderFactory).(ProviderFactory); ok {
		return factory
	}
	return model.NewProvider
}
