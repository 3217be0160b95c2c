package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env         string
	GatewayAddr string
	FrontendURL string
	Tracing     bool

	CorsConfig     *CorsConfig
	JWTConfig      *JWTConfig
	RedisConfig    *RedisConfig
	AWSConfig      *AWSConfig
	DynamoDBConfig *DynamoDBConfig
	OAuthConfig    *OAuthConfig
	S3WatchConfig  *S3WatchConfig

	// Default registration policy when the settings table has no override.
	RegistrationPolicy string
}

type CorsConfig struct {
	Origins string
}

type JWTConfig struct {
	SecretKey        string
	RefreshSecretKey string
}

type RedisConfig struct {
	HOST string
}

type AWSConfig struct {
	Region string
}

type DynamoDBConfig struct {
	UsersTableName      string
	SettingsTableName   string
	IngestionsTableName string
}

// ProviderConfig holds the per-provider OAuth client credentials plus the
// endpoints, which are overridable so tests can point providers at local
// fake servers.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	Enabled      bool

	AuthURL     string
	ExchangeURL string
	ProfileURL  string
	EmailsURL   string
}

type OAuthConfig struct {
	// CallbackBase is the externally visible base URL; the per-provider
	// redirect_uri is CallbackBase + "/oauth/<provider>/callback".
	CallbackBase  string
	StateTokenTTL time.Duration

	Google *ProviderConfig
	Github *ProviderConfig
}

type S3WatchConfig struct {
	Enabled  bool
	Bucket   string
	Interval time.Duration
	BasePath string
	FolderID string
}

func LoadConfig() Config {
	return Config{
		Env:         getEnv("ENV", "DEV"),
		GatewayAddr: getEnv("GATEWAY_ADDR", ":8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),
		Tracing:     getBool("TRACING", false),

		CorsConfig: &CorsConfig{
			Origins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		JWTConfig: &JWTConfig{
			SecretKey:        os.Getenv("JWT_SECRET_KEY"),
			RefreshSecretKey: os.Getenv("JWT_REFRESH_SECRET_KEY"),
		},
		RedisConfig: &RedisConfig{
			HOST: getEnv("REDIS_HOST", "localhost:6379"),
		},
		AWSConfig: &AWSConfig{
			Region: getEnv("AWS_REGION", "us-east-1"),
		},
		DynamoDBConfig: &DynamoDBConfig{
			UsersTableName:      getEnv("DYNAMODB_USERS_TABLE", "users"),
			SettingsTableName:   getEnv("DYNAMODB_SETTINGS_TABLE", "settings"),
			IngestionsTableName: getEnv("DYNAMODB_INGESTIONS_TABLE", "ingestions"),
		},
		OAuthConfig: &OAuthConfig{
			CallbackBase:  getEnv("OAUTH_CALLBACK_BASE", "http://localhost:8080"),
			StateTokenTTL: getDuration("STATE_TOKEN_TTL", 30*time.Minute),
			Google: &ProviderConfig{
				ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
				ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
				Enabled:      getBool("GOOGLE_ENABLED", false),
				AuthURL:      getEnv("GOOGLE_AUTH_URL", "https://accounts.google.com/o/oauth2/auth"),
				ExchangeURL:  getEnv("GOOGLE_EXCHANGE_URL", "https://accounts.google.com/o/oauth2/token"),
				ProfileURL:   getEnv("GOOGLE_PROFILE_URL", "https://www.googleapis.com/oauth2/v3/userinfo"),
			},
			Github: &ProviderConfig{
				ClientID:     os.Getenv("GITHUB_CLIENT_ID"),
				ClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
				Enabled:      getBool("GITHUB_ENABLED", false),
				AuthURL:      getEnv("GITHUB_AUTH_URL", "https://github.com/login/oauth/authorize"),
				ExchangeURL:  getEnv("GITHUB_EXCHANGE_URL", "https://github.com/login/oauth/access_token"),
				ProfileURL:   getEnv("GITHUB_PROFILE_URL", "https://api.github.com/user"),
				EmailsURL:    getEnv("GITHUB_EMAILS_URL", "https://api.github.com/user/emails"),
			},
		},
		S3WatchConfig: &S3WatchConfig{
			Enabled:  getBool("S3_WATCH_ENABLED", false),
			Bucket:   os.Getenv("S3_WATCH_BUCKET"),
			Interval: getDuration("S3_WATCH_INTERVAL", 10*time.Second),
			BasePath: getEnv("S3_WATCH_BASE_PATH", os.TempDir()),
			FolderID: os.Getenv("S3_WATCH_FOLDER_ID"),
		},

		RegistrationPolicy: getEnv("REGISTRATION_POLICY", "open"),
	}
}

func (c *Config) ValidateAllSecrets() error {
	if c.JWTConfig.SecretKey == "" || c.JWTConfig.RefreshSecretKey == "" {
		return fmt.Errorf("JWT secrets are not set")
	}
	if c.OAuthConfig.Google.Enabled && (c.OAuthConfig.Google.ClientID == "" || c.OAuthConfig.Google.ClientSecret == "") {
		return fmt.Errorf("google provider is enabled but its client credentials are not set")
	}
	if c.OAuthConfig.Github.Enabled && (c.OAuthConfig.Github.ClientID == "" || c.OAuthConfig.Github.ClientSecret == "") {
		return fmt.Errorf("github provider is enabled but its client credentials are not set")
	}
	if c.S3WatchConfig.Enabled && c.S3WatchConfig.Bucket == "" {
		return fmt.Errorf("s3 watch is enabled but S3_WATCH_BUCKET is not set")
	}
	switch c.RegistrationPolicy {
	case "open", "closed", "approval":
	default:
		return fmt.Errorf("unknown registration policy %q", c.RegistrationPolicy)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
