package config

import (
	"errors"

	"github.com/zalando/go-keyring"

	apperrors "sparkload/pkg/errors"
	"sparkload/pkg/models"
)

// KeyringService is the service name passwords are stored under
const KeyringService = "sparkload"

// keyringAccount identifies a database login in the keyring
func keyringAccount(cfg *models.Config) string {
	endpoint := cfg.Cluster.Host
	if cfg.Cluster.Dialect == DialectSnowflake {
		endpoint = cfg.Cluster.Account
	}
	return cfg.Cluster.DBUser + "@" + endpoint
}

// LookupPassword reads the database password from the OS keyring. A missing
// entry yields an empty password so that validation reports it.
func LookupPassword(cfg *models.Config) (string, error) {
	password, err := keyring.Get(KeyringService, keyringAccount(cfg))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", apperrors.Wrap(err, apperrors.ErrCodeSecretsStore, "Failed to read password from keyring").
			WithContext("account", keyringAccount(cfg))
	}
	return password, nil
}

// StorePassword saves the database password in the OS keyring
func StorePassword(cfg *models.Config, password string) error {
	if err := keyring.Set(KeyringService, keyringAccount(cfg), password); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeSecretsStore, "Failed to store password in keyring").
			WithContext("account", keyringAccount(cfg))
	}
	return nil
}
