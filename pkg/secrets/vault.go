// Package secrets pulls credentials from a HashiCorp Vault KV engine into the
// process environment before configuration is loaded.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ManagedKeys are the environment variables Vault may supply. Other keys in
// the secret are ignored.
var ManagedKeys = []string{
	"DB_PASSWORD",
	"REDIS_PASSWORD",
	"TYPESENSE_API_KEY",
	"OPENAI_API_KEY",
	"AUTH_TOKEN_SECRET",
	"UPI_PAYEE_ID",
}

type VaultConfig struct {
	Enabled   bool
	Addr      string
	Token     string
	Namespace string
	Mount     string
	Path      string
	KVVersion int
	Timeout   time.Duration
	Overwrite bool
}

// VaultResult reports how many managed keys were applied
type VaultResult struct {
	Enabled bool
	Path    string
	Loaded  int
	Skipped int
}

// LoadVaultConfig reads VAULT_* settings from the environment
func LoadVaultConfig() VaultConfig {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("VAULT_ENABLED", false)
	v.SetDefault("VAULT_MOUNT", "secret")
	v.SetDefault("VAULT_PATH", "healthmarket")
	v.SetDefault("VAULT_KV_VERSION", 2)
	v.SetDefault("VAULT_TIMEOUT_MS", 5000)
	v.SetDefault("VAULT_OVERWRITE", false)

	return VaultConfig{
		Enabled:   v.GetBool("VAULT_ENABLED"),
		Addr:      v.GetString("VAULT_ADDR"),
		Token:     v.GetString("VAULT_TOKEN"),
		Namespace: v.GetString("VAULT_NAMESPACE"),
		Mount:     v.GetString("VAULT_MOUNT"),
		Path:      v.GetString("VAULT_PATH"),
		KVVersion: v.GetInt("VAULT_KV_VERSION"),
		Timeout:   time.Duration(v.GetInt("VAULT_TIMEOUT_MS")) * time.Millisecond,
		Overwrite: v.GetBool("VAULT_OVERWRITE"),
	}
}

// ApplyVaultSecrets fetches the configured secret and exports its managed
// keys. Keys already set in the environment win unless Overwrite is set.
func ApplyVaultSecrets(ctx context.Context, cfg VaultConfig) (VaultResult, error) {
	result := VaultResult{Enabled: cfg.Enabled, Path: cfg.Path}
	if !cfg.Enabled {
		return result, nil
	}
	if cfg.Addr == "" || cfg.Token == "" {
		return result, errors.New("vault configuration incomplete (VAULT_ADDR, VAULT_TOKEN)")
	}

	data, err := fetchSecret(ctx, cfg)
	if err != nil {
		return result, err
	}

	for _, key := range ManagedKeys {
		value, ok := data[key]
		if !ok {
			continue
		}
		if !cfg.Overwrite && os.Getenv(key) != "" {
			result.Skipped++
			continue
		}
		if err := os.Setenv(key, stringifyVaultValue(value)); err != nil {
			return result, err
		}
		result.Loaded++
	}
	return result, nil
}

func fetchSecret(ctx context.Context, cfg VaultConfig) (map[string]interface{}, error) {
	url, err := buildVaultURL(cfg.Addr, cfg.Mount, cfg.Path, cfg.KVVersion)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := &http.Client{Timeout: timeout}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Vault-Token", cfg.Token)
	if cfg.Namespace != "" {
		req.Header.Set("X-Vault-Namespace", cfg.Namespace)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vault fetch failed: %s %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	if payload.Data == nil {
		return nil, errors.New("vault response missing data")
	}
	if cfg.KVVersion == 1 {
		return payload.Data, nil
	}
	inner, ok := payload.Data["data"].(map[string]interface{})
	if !ok {
		return nil, errors.New("vault response missing data for KV v2")
	}
	return inner, nil
}

func buildVaultURL(addr, mount, path string, kvVersion int) (string, error) {
	addr = strings.TrimRight(addr, "/")
	mount = strings.Trim(mount, "/")
	path = strings.TrimLeft(path, "/")
	if addr == "" || mount == "" || path == "" {
		return "", errors.New("vault address, mount, and path must be set")
	}
	if kvVersion == 1 {
		return fmt.Sprintf("%s/v1/%s/%s", addr, mount, path), nil
	}
	return fmt.Sprintf("%s/v1/%s/data/%s", addr, mount, path), nil
}

func stringifyVaultValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
