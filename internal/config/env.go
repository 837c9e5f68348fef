package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/iwvelando/rate-impact/pkg/constants"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultEnvFiles are the dotenv files read by LoadEnvironment when present.
var DefaultEnvFiles = []string{".env.local", ".env"}

// Environment holds the secrets and endpoints that only come from the
// process environment.
type Environment struct {
	ZohoDC           string
	ZohoClientID     string
	ZohoClientSecret string
	ZohoRefreshToken string
	ResendAPIKey     string
	TeamNotifyEmail  string
	FromEmail        string
	PresetsRedisURL  string
}

var envKeys = map[string]string{
	"zoho_dc":            "ZOHO_DC",
	"zoho_client_id":     "ZOHO_CLIENT_ID",
	"zoho_client_secret": "ZOHO_CLIENT_SECRET",
	"zoho_refresh_token": "ZOHO_REFRESH_TOKEN",
	"resend_api_key":     "RESEND_API_KEY",
	"team_notify_email":  "TEAM_NOTIFY_EMAIL",
	"from_email":         "FROM_EMAIL",
	"presets_redis_url":  "PRESETS_REDIS_URL",
}

// LoadEnvironment loads any of the given dotenv files that exist, without
// overriding variables already set, then reads the environment. Earlier
// files win over later ones.
func LoadEnvironment(files ...string) (Environment, error) {
	for _, file := range files {
		if err := godotenv.Load(file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Environment{}, fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	v := viper.New()
	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return Environment{}, err
		}
	}
	v.SetDefault("zoho_dc", constants.DefaultZohoDC)
	v.SetDefault("from_email", constants.DefaultFromEmail)

	return Environment{
		ZohoDC:           v.GetString("zoho_dc"),
		ZohoClientID:     v.GetString("zoho_client_id"),
		ZohoClientSecret: v.GetString("zoho_client_secret"),
		ZohoRefreshToken: v.GetString("zoho_refresh_token"),
		ResendAPIKey:     v.GetString("resend_api_key"),
		TeamNotifyEmail:  v.GetString("team_notify_email"),
		FromEmail:        v.GetString("from_email"),
		PresetsRedisURL:  v.GetString("presets_redis_url"),
	}, nil
}
