package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	vault "github.com/hashicorp/vault/api"
)

var (
	ErrNoVaultAddress = errors.New("vault: VAULT_ADDR is not set")
	ErrNoVaultToken   = errors.New("vault: VAULT_TOKEN is not set")
)

// VaultConfig locates the KV v2 secret holding the service credentials
type VaultConfig struct {
	Enabled   bool
	Address   string
	Token     string
	Namespace string
	Mount     string // KV v2 mount, "secret" by default
	Path      string // secret path under the mount, "chatonline" by default
	Timeout   time.Duration
}

// VaultConfigFromEnv reads the VAULT_* variables. Vault stays off unless
// VAULT_ENABLED parses as true or is "yes".
func VaultConfigFromEnv() VaultConfig {
	enabled, _ := strconv.ParseBool(os.Getenv("VAULT_ENABLED"))
	if os.Getenv("VAULT_ENABLED") == "yes" {
		enabled = true
	}
	return VaultConfig{
		Enabled:   enabled,
		Address:   os.Getenv("VAULT_ADDR"),
		Token:     os.Getenv("VAULT_TOKEN"),
		Namespace: os.Getenv("VAULT_NAMESPACE"),
		Mount:     os.Getenv("VAULT_MOUNT_PATH"),
		Path:      os.Getenv("VAULT_SECRETS_PATH"),
		Timeout:   10 * time.Second,
	}
}

// Vault reads the credential secret from a KV v2 engine
type Vault struct {
	kv   *vault.KVv2
	path string
}

// NewVault connects a client for cfg. It does not contact Vault yet.
func NewVault(cfg VaultConfig) (*Vault, error) {
	if cfg.Address == "" {
		return nil, ErrNoVaultAddress
	}
	if cfg.Token == "" {
		return nil, ErrNoVaultToken
	}
	if cfg.Mount == "" {
		cfg.Mount = "secret"
	}
	if cfg.Path == "" {
		cfg.Path = "chatonline"
	}

	clientConfig := vault.DefaultConfig()
	clientConfig.Address = cfg.Address
	if cfg.Timeout > 0 {
		clientConfig.Timeout = cfg.Timeout
	}
	client, err := vault.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("vault client: %w", err)
	}
	client.SetToken(cfg.Token)
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	return &Vault{kv: client.KVv2(cfg.Mount), path: cfg.Path}, nil
}

// Fetch returns the string fields of the secret. A missing secret yields
// an empty map.
func (v *Vault) Fetch(ctx context.Context) (map[string]string, error) {
	secret, err := v.kv.Get(ctx, v.path)
	if errors.Is(err, vault.ErrSecretNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("vault: read %s: %w", v.path, err)
	}

	fields := make(map[string]string, len(secret.Data))
	for k, raw := range secret.Data {
		if s, ok := raw.(string); ok && s != "" {
			fields[k] = s
		}
	}
	return fields, nil
}
