package drive

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	gdrive "google.golang.org/api/drive/v3"
)

// ErrInvalidCredentials is returned when the service account key is missing
// or malformed. It blocks every gallery operation.
var ErrInvalidCredentials = errors.New("invalid service account credentials")

// LoadCredentials returns the service account key JSON, read either from the
// inline key or from the key file. Escaped newlines in the private key are
// restored, which is how keys usually arrive through environment variables.
// Only service account keys are accepted.
func LoadCredentials(inline, file string) ([]byte, error) {
	raw := []byte(strings.TrimSpace(inline))
	if len(raw) == 0 && file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidCredentials, file, err)
		}
		raw = data
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: no key provided", ErrInvalidCredentials)
	}

	var key map[string]any
	if err := json.Unmarshal(raw, &key); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}
	if _, ok := key["type"]; !ok {
		key["type"] = "service_account"
	}
	if privateKey, ok := key["private_key"].(string); ok {
		key["private_key"] = strings.ReplaceAll(privateKey, `\n`, "\n")
	}

	out, err := json.Marshal(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	cfg, err := google.JWTConfigFromJSON(out, gdrive.DriveReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if cfg.Email == "" || len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("%w: client_email and private_key are required", ErrInvalidCredentials)
	}
	return out, nil
}
