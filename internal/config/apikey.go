package config

import (
	"errors"
	"fmt"
	"os"
)

// ResolveAPIKey resolves a required credential. Supported sources: "env"
// (read envVar) and "config" (use configValue). There is no keyring
// backend; "keyring" is rejected rather than quietly read from env.
func ResolveAPIKey(source, configValue, envVar string) (string, error) {
	switch source {
	case "env":
		return resolveFromEnv(envVar)
	case "config":
		if configValue == "" {
			return "", fmt.Errorf("api_key_source is 'config' but no api_key value provided")
		}
		return configValue, nil
	case "keyring":
		return "", errKeyring
	default:
		return "", fmt.Errorf("unknown api_key_source: %q", source)
	}
}

// ResolveOptionalToken is ResolveAPIKey for credentials that may be absent,
// such as the shared source-control token. An unset variable or empty config
// value yields "" without error; an unknown source is still an error.
func ResolveOptionalToken(source, configValue, envVar string) (string, error) {
	switch source {
	case "", "env":
		if envVar == "" {
			return "", nil
		}
		return os.Getenv(envVar), nil
	case "config":
		return configValue, nil
	case "keyring":
		return "", errKeyring
	default:
		return "", fmt.Errorf("unknown token_source: %q", source)
	}
}

var errKeyring = errors.New(`credential source "keyring" is not supported; use "env" or "config"`)

func resolveFromEnv(envVar string) (string, error) {
	if envVar == "" {
		return "", fmt.Errorf("no environment variable name specified")
	}
	val := os.Getenv(envVar)
	if val == "" {
		return "", fmt.Errorf("environment variable %s is not set", envVar)
	}
	return val, nil
}
