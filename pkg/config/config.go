// Package config provides centralized configuration management for the
// comms bridge. Every provider credential comes from the environment and is
// loaded once into an immutable struct.
package config

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"golang.org/x/oauth2/google"
)

// Google API scopes, grouped the way each adapter requests them.
var (
	GmailScopes = []string{
		"https://www.googleapis.com/auth/gmail.readonly",
		"https://www.googleapis.com/auth/gmail.send",
		"https://www.googleapis.com/auth/gmail.compose",
		"https://www.googleapis.com/auth/gmail.modify",
	}

	CalendarScopes = []string{
		"https://www.googleapis.com/auth/calendar.readonly",
	}

	SheetsScopes = []string{
		"https://www.googleapis.com/auth/spreadsheets",
	}

	DriveScopes = []string{
		"https://www.googleapis.com/auth/drive.readonly",
		"https://www.googleapis.com/auth/documents.readonly",
		"https://www.googleapis.com/auth/presentations.readonly",
		"https://www.googleapis.com/auth/spreadsheets.readonly",
	}
)

// Config holds the complete configuration for the bridge.
type Config struct {
	// Google Workspace: one service account with domain-wide delegation,
	// impersonating the acting user.
	Google struct {
		CredentialsJSON string
		DelegatedUser   string
	}

	// Slack: the user token makes every search and send act as the
	// configured user rather than a bot identity.
	Slack struct {
		UserToken string
		BotToken  string
	}

	// Grain meeting recordings
	Grain struct {
		APIToken string
		BaseURL  string
	}

	// Notion workspace
	Notion struct {
		APIToken   string
		BaseURL    string
		APIVersion string
	}

	// Ashby applicant tracking
	Ashby struct {
		APIKey  string
		BaseURL string
	}
}

var (
	once   sync.Once
	config *Config
)

// Load initializes and loads the configuration from environment variables.
func Load() *Config {
	once.Do(func() {
		v := viper.New()

		v.SetDefault("google.delegated_user", "mel@develophealth.ai")
		v.SetDefault("grain.base_url", "https://api.grain.com/_/public-api/v2")
		v.SetDefault("notion.base_url", "https://api.notion.com/v1")
		v.SetDefault("notion.api_version", "2022-06-28")
		v.SetDefault("ashby.base_url", "https://api.ashbyhq.com")

		v.AutomaticEnv()

		config = &Config{}

		// Google Workspace
		config.Google.CredentialsJSON = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		config.Google.DelegatedUser = os.Getenv("GOOGLE_DELEGATED_USER")
		if config.Google.DelegatedUser == "" {
			config.Google.DelegatedUser = v.GetString("google.delegated_user")
		}

		// Slack
		config.Slack.UserToken = os.Getenv("SLACK_USER_TOKEN")
		config.Slack.BotToken = os.Getenv("SLACK_BOT_TOKEN")

		// Grain
		config.Grain.APIToken = os.Getenv("GRAIN_WORKSPACE_API_TOKEN")
		config.Grain.BaseURL = strings.TrimRight(envOr("GRAIN_API_BASE_URL", v.GetString("grain.base_url")), "/")

		// Notion
		config.Notion.APIToken = os.Getenv("NOTION_API_TOKEN")
		config.Notion.BaseURL = strings.TrimRight(envOr("NOTION_API_BASE_URL", v.GetString("notion.base_url")), "/")
		config.Notion.APIVersion = v.GetString("notion.api_version")

		// Ashby
		config.Ashby.APIKey = os.Getenv("ASHBY_API_KEY")
		config.Ashby.BaseURL = strings.TrimRight(envOr("ASHBY_API_BASE_URL", v.GetString("ashby.base_url")), "/")
	})

	return config
}

func envOr(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// Validate checks if all required configuration values are set.
func (c *Config) Validate() error {
	var errors []string

	if c.Google.CredentialsJSON == "" {
		errors = append(errors, "Google service account configuration is incomplete (GOOGLE_APPLICATION_CREDENTIALS)")
	}
	if c.Slack.UserToken == "" {
		errors = append(errors, "Slack configuration is incomplete (SLACK_USER_TOKEN)")
	}
	if c.Grain.APIToken == "" {
		errors = append(errors, "Grain configuration is incomplete (GRAIN_WORKSPACE_API_TOKEN)")
	}
	if c.Notion.APIToken == "" {
		errors = append(errors, "Notion configuration is incomplete (NOTION_API_TOKEN)")
	}
	if c.Ashby.APIKey == "" {
		errors = append(errors, "Ashby configuration is incomplete (ASHBY_API_KEY)")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

// GoogleHTTPClient builds an authenticated client for the given scopes,
// impersonating the delegated user via domain-wide delegation. The
// credentials value may be the service account JSON itself or a path to
// the key file.
func (c *Config) GoogleHTTPClient(ctx context.Context, scopes ...string) (*http.Client, error) {
	if c.Google.CredentialsJSON == "" {
		return nil, fmt.Errorf("missing GOOGLE_APPLICATION_CREDENTIALS environment variable")
	}

	creds := []byte(c.Google.CredentialsJSON)
	if !strings.HasPrefix(strings.TrimSpace(c.Google.CredentialsJSON), "{") {
		data, err := os.ReadFile(c.Google.CredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("reading service account key file: %w", err)
		}
		creds = data
	}

	jwtConfig, err := google.JWTConfigFromJSON(creds, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing service account credentials: %w", err)
	}
	jwtConfig.Subject = c.Google.DelegatedUser

	return jwtConfig.Client(ctx), nil
}
