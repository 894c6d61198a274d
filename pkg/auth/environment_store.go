package auth

import (
	"os"
	"time"
)

// Environment variables holding the Apify token. The second wins when both
// are set.
const (
	EnvToken      = "APIFY_TOKEN"
	EnvTokenScope = "LIEXPORT_APIFY_TOKEN"
)

// EnvironmentStore implements CredentialStore over environment variables.
// It is read-only.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func envToken() string {
	if token := os.Getenv(EnvTokenScope); token != "" {
		return token
	}
	return os.Getenv(EnvToken)
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment token under the requested name
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	token := envToken()
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	if name == "" {
		name = DefaultAccount
	}

	return &Account{
		Name:         name,
		Token:        token,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if the environment holds a token
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if an environment token is set
func (e *EnvironmentStore) Exists(name string) bool {
	return envToken() != ""
}

// Token implements TokenSource
func (e *EnvironmentStore) Token() (string, error) {
	token := envToken()
	if token == "" {
		return "", ErrCredentialsNotFound
	}
	return token, nil
}
