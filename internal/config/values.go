package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment overrides.
const (
	EnvPort        = "PORT"
	EnvAPITokens   = "ORCABI_API_TOKENS"
	EnvMaxUploadMB = "ORCABI_MAX_UPLOAD_MB"
	EnvConfigPath  = "ORCABI_SERVICES"
)

// Int reads the numeric shapes YAML and TOML decoders produce from a service
// config map. Strings holding an integer are accepted too.
func Int(v interface{}) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return n
		}
	}
	return 0
}

func String(v interface{}) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func Bool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(t))
		return b
	}
	return false
}

// Strings accepts a list or a comma-separated string.
func Strings(v interface{}) []string {
	var raw []string
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case []string:
		raw = t
	case string:
		raw = strings.Split(t, ",")
	}
	var out []string
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// EnvInt returns the integer value of an environment variable, or fallback
// when it is unset or malformed.
func EnvInt(name string, fallback int) int {
	if v, ok := os.LookupEnv(name); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}
