/**
 * @description
 * This file handles configuration management for ai-agent-manager.
 * It uses the 'viper' library to load configuration from environment
 * variables, providing a centralized and consistent way to manage
 * application settings.
 */
package config

import (
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	ServerPort  string `mapstructure:"SERVER_PORT"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	GoogleRedirectURI  string `mapstructure:"GOOGLE_REDIRECT_URI"`

	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	ClaudeAPIKey string `mapstructure:"CLAUDE_API_KEY"`
	OpenAIAPIKey string `mapstructure:"OPENAI_API_KEY"`

	GeminiModel string `mapstructure:"GEMINI_MODEL"`
	ClaudeModel string `mapstructure:"CLAUDE_MODEL"`
	OpenAIModel string `mapstructure:"OPENAI_MODEL"`

	StripeSecretKey      string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret  string `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	StripeMonthlyPriceID string `mapstructure:"STRIPE_MONTHLY_PRICE_ID"`
	StripeYearlyPriceID  string `mapstructure:"STRIPE_YEARLY_PRICE_ID"`

	SMTPHost   string `mapstructure:"SMTP_HOST"`
	SMTPPort   string `mapstructure:"SMTP_PORT"`
	SMTPUser   string `mapstructure:"SMTP_USER"`
	SMTPPass   string `mapstructure:"SMTP_PASS"`
	SMTPFrom   string `mapstructure:"SMTP_FROM"`
	AdminEmail string `mapstructure:"ADMIN_EMAIL"`

	AMQPURL string `mapstructure:"AMQP_URL"`

	UsageSweepSchedule string `mapstructure:"USAGE_SWEEP_SCHEDULE"`
	MetricsEnabled     bool   `mapstructure:"METRICS_ENABLED"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (config Config, err error) {
	viper.SetDefault("SERVER_PORT", "3001")
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")
	viper.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	viper.SetDefault("CLAUDE_MODEL", "claude-sonnet-4-20250514")
	viper.SetDefault("OPENAI_MODEL", "gpt-4-turbo-preview")
	viper.SetDefault("SMTP_PORT", "587")
	viper.SetDefault("USAGE_SWEEP_SCHEDULE", "0 8 * * 1") // Mondays 08:00
	viper.SetDefault("METRICS_ENABLED", true)
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	for _, key := range []string{
		"SERVER_PORT", "DATABASE_URL", "FRONTEND_URL",
		"JWT_SECRET",
		"GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_SECRET", "GOOGLE_REDIRECT_URI",
		"GEMINI_API_KEY", "CLAUDE_API_KEY", "OPENAI_API_KEY",
		"GEMINI_MODEL", "CLAUDE_MODEL", "OPENAI_MODEL",
		"STRIPE_SECRET_KEY", "STRIPE_WEBHOOK_SECRET",
		"STRIPE_MONTHLY_PRICE_ID", "STRIPE_YEARLY_PRICE_ID",
		"SMTP_HOST", "SMTP_PORT", "SMTP_USER", "SMTP_PASS", "SMTP_FROM",
		"ADMIN_EMAIL",
		"AMQP_URL",
		"USAGE_SWEEP_SCHEDULE", "METRICS_ENABLED",
	} {
		_ = viper.BindEnv(key)
	}

	err = viper.Unmarshal(&config)
	return
}
