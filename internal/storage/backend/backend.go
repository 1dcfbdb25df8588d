// Package backend picks and constructs the storage.Provider for a
// configured database target.
package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchellh/go-homedir"

	"github.com/julianstephens/foodmood/internal/keyring"
	"github.com/julianstephens/foodmood/internal/storage"
	"github.com/julianstephens/foodmood/internal/storage/diskv"
	"github.com/julianstephens/foodmood/internal/storage/postgres"
	"github.com/julianstephens/foodmood/internal/storage/sqlite"
)

// KeyringTarget makes the connection string come from the OS keyring.
const KeyringTarget = "keyring"

type Kind string

const (
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
	KindDiskv    Kind = "diskv"
)

// Detect classifies a target without touching the filesystem or keyring.
func Detect(target string) Kind {
	switch {
	case target == KeyringTarget || postgres.IsConnString(target):
		return KindPostgres
	case diskv.IsPath(target):
		return KindDiskv
	default:
		return KindSQLite
	}
}

// Open builds the provider for target. It does not call Init or Load.
func Open(target string, opts ...storage.Option) (storage.Provider, error) {
	if target == KeyringTarget {
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				return nil, fmt.Errorf("no connection string in keyring, use 'foodmood keyring set' first")
			}
			return nil, err
		}
		// Keyring contents may carry a password
		return postgres.New(connStr, opts...), nil
	}

	switch Detect(target) {
	case KindPostgres:
		if _, err := postgres.ValidateConnString(target); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("PostgreSQL connection strings with embedded credentials are not allowed; store it with 'foodmood keyring set' or use PGPASSWORD/.pgpass")
			}
			return nil, err
		}
		return postgres.New(target, opts...), nil
	case KindDiskv:
		path, err := homedir.Expand(target)
		if err != nil {
			return nil, fmt.Errorf("failed to expand %s: %w", target, err)
		}
		return diskv.New(path, opts...), nil
	default:
		path, err := homedir.Expand(strings.TrimSpace(target))
		if err != nil {
			return nil, fmt.Errorf("failed to expand %s: %w", target, err)
		}
		return sqlite.NewStore(path, opts...), nil
	}
}
