package config

import "os"

// CredentialSource represents where a credential comes from.
type CredentialSource string

const (
	CredSourceEnv    CredentialSource = "env"
	CredSourceConfig CredentialSource = "config"
	CredSourceNone   CredentialSource = "none"
)

// KeyStatus represents the status of a configured credential.
type KeyStatus struct {
	Name   string           `json:"name"`
	Source CredentialSource `json:"source"`
	IsSet  bool             `json:"is_set"`
	Masked string           `json:"masked,omitempty"` // e.g., "sk-...abc"
}

// CheckAPIKeys returns the status of all credentials the agent can use.
// Every one of them is optional; adapters and features degrade when a
// credential is absent instead of failing.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	return []KeyStatus{
		checkKey("NewsAPI Key", cfg.News.NewsAPIKey, "NEWS_API_KEY"),
		checkKey("OpenAI API Key", cfg.LLM.APIKey, "OPENAI_API_KEY"),
		checkKey("SMTP Password", cfg.Email.Password, "EMAIL_PASSWORD"),
	}
}

// checkKey checks if a credential is set and where it came from.
func checkKey(name, value, envVar string) KeyStatus {
	status := KeyStatus{
		Name:  name,
		IsSet: value != "",
	}

	if value != "" {
		// Check if it came from env
		if os.Getenv(envVar) != "" {
			status.Source = CredSourceEnv
		} else {
			status.Source = CredSourceConfig
		}
		status.Masked = maskKey(value)
	} else {
		status.Source = CredSourceNone
	}

	return status
}

// maskKey masks a credential for display, showing only first 3 and last 3 chars.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
