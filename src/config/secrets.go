package config

import (
	"fmt"
	"os"
	"strings"
)

// readSecretFromFile reads a secret from the given path.
// It trims whitespace and returns an error if the file cannot be read or is empty.
func readSecretFromFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file '%s': %w", path, err)
	}

	secret := strings.TrimSpace(string(data))
	if secret == "" {
		return "", fmt.Errorf("secret file '%s' is empty", path)
	}

	return secret, nil
}

// loadStorageSecret fills SecretKey of an s3 storage from its secret file.
// Static credentials need both halves; without them the AWS default chain is used.
func loadStorageSecret(sc *StorageConfig) error {
	if sc.SecretKeyFile != "" {
		secret, err := readSecretFromFile(sc.SecretKeyFile)
		if err != nil {
			return fmt.Errorf("storage %q: %w", sc.Name, err)
		}
		sc.SecretKey = secret
	}

	switch {
	case sc.AccessKey != "" && sc.SecretKey == "":
		return fmt.Errorf("storage %q: secret_key_file is required with access_key", sc.Name)
	case sc.AccessKey == "" && sc.SecretKey != "":
		return fmt.Errorf("storage %q: access_key is required with secret_key_file", sc.Name)
	}
	return nil
}
