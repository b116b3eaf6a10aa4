package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable FromEnv reads.
const EnvPrefix = "FORMFILL"

type fileDocument struct {
	ActiveProvider string                  `json:"active_provider" yaml:"active_provider"`
	Debug          *fileDebug              `json:"debug" yaml:"debug"`
	Providers      map[string]fileProvider `json:"providers" yaml:"providers"`
}

type fileDebug struct {
	Providers *bool `json:"providers" yaml:"providers"`
	Fill      *bool `json:"fill" yaml:"fill"`
}

type fileProvider struct {
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	Model    string `json:"model" yaml:"model"`
	Timeout  string `json:"timeout" yaml:"timeout"`
	APIKey   string `json:"api_key" yaml:"api_key"`
}

// Load reads a JSON or YAML file and overlays it on Default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse overlays a JSON or YAML document on Default. Source names the
// document in error messages.
func Parse(data []byte, source string) (Config, error) {
	doc, err := parseDocument(data, source)
	if err != nil {
		return Config{}, err
	}
	return overlay(Default(), doc, source)
}

func parseDocument(data []byte, source string) (fileDocument, error) {
	var doc fileDocument
	if len(strings.TrimSpace(string(data))) == 0 {
		return fileDocument{}, fmt.Errorf("config: file %s is empty", source)
	}

	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	doc = fileDocument{}
	if err := yaml.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}

	return fileDocument{}, fmt.Errorf("config: parse %s: invalid JSON or YAML", source)
}

// overlay applies a parsed document on top of base and returns the result.
// Empty document values keep the base value.
func overlay(base Config, doc fileDocument, source string) (Config, error) {
	out := base.Clone()
	if name := strings.TrimSpace(doc.ActiveProvider); name != "" {
		out.ActiveProvider = strings.ToLower(name)
	}
	if doc.Debug != nil {
		if doc.Debug.Providers != nil {
			out.Debug.Providers = *doc.Debug.Providers
		}
		if doc.Debug.Fill != nil {
			out.Debug.Fill = *doc.Debug.Fill
		}
	}
	for rawName, fp := range doc.Providers {
		name := strings.ToLower(strings.TrimSpace(rawName))
		if name == "" {
			return Config{}, fmt.Errorf("config: file %s defines a provider with an empty name", source)
		}
		p := out.Providers[name]
		if v := strings.TrimSpace(fp.Endpoint); v != "" {
			p.Endpoint = v
		}
		if v := strings.TrimSpace(fp.Model); v != "" {
			p.Model = v
		}
		if v := strings.TrimSpace(fp.APIKey); v != "" {
			p.APIKey = v
		}
		if v := strings.TrimSpace(fp.Timeout); v != "" {
			d, err := parseTimeout(v)
			if err != nil {
				return Config{}, fmt.Errorf("config: file %s provider %q: %w", source, name, err)
			}
			p.Timeout = d
		}
		out.Providers[name] = p
	}
	return out, nil
}

// FromEnv overlays FORMFILL_* environment variables on cfg and returns the
// result. Per-provider keys are FORMFILL_<NAME>_ENDPOINT, _MODEL, _TIMEOUT
// and _API_KEY; the OpenAI key also falls back to OPENAI_API_KEY.
func FromEnv(cfg Config) Config {
	out := cfg.Clone()
	out.ActiveProvider = strings.ToLower(getEnv(EnvPrefix+"_PROVIDER", out.ActiveProvider))
	out.Debug.Providers = getEnvAsBool(EnvPrefix+"_DEBUG_PROVIDERS", out.Debug.Providers)
	out.Debug.Fill = getEnvAsBool(EnvPrefix+"_DEBUG_FILL", out.Debug.Fill)

	for name, p := range out.Providers {
		key := EnvPrefix + "_" + strings.ToUpper(name)
		p.Endpoint = getEnv(key+"_ENDPOINT", p.Endpoint)
		p.Model = getEnv(key+"_MODEL", p.Model)
		p.Timeout = getEnvAsDuration(key+"_TIMEOUT", p.Timeout)
		p.APIKey = getEnv(key+"_API_KEY", p.APIKey)
		if name == ProviderOpenAI && p.APIKey == "" {
			p.APIKey = getEnv("OPENAI_API_KEY", "")
		}
		out.Providers[name] = p
	}
	return out
}

// parseTimeout accepts Go durations ("30s") and bare seconds ("30").
func parseTimeout(raw string) (time.Duration, error) {
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q", raw)
	}
	return d, nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := parseTimeout(value); err == nil {
			return d
		}
	}
	return defaultValue
}
