package application

import (
	"context"
	"errors"

	"varafleet/internal/domain/model"
	"varafleet/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialProvider = (*StaticCredentialProvider)(nil)

// ErrNoToken is returned when credential initialization finds no configured token.
var ErrNoToken = errors.New("no GitHub token configured: set VARAFLEET_GITHUB_TOKEN")

// StaticCredentialProvider serves a token fixed at construction time,
// typically loaded from the environment.
type StaticCredentialProvider struct {
	token string
}

// NewStaticCredentialProvider creates a provider for the given token. An
// empty token is allowed at construction; Credentials fails instead, so the
// error surfaces on the operation that actually needs it.
func NewStaticCredentialProvider(token string) *StaticCredentialProvider {
	return &StaticCredentialProvider{token: token}
}

// Credentials returns the configured token or ErrNoToken.
func (p *StaticCredentialProvider) Credentials(_ context.Context) (model.Credentials, error) {
	if p.token == "" {
		return model.Credentials{}, ErrNoToken
	}
	return model.Credentials{Token: p.token}, nil
}
