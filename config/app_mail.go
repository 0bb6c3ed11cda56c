package config

import (
	"github.com/akeren/launchwait/pkg/utils"
)

// MailConfig configures the acknowledgment email sent after a successful
// registration. Mail is disabled when no API key is present.
type MailConfig struct {
	SendgridAPIKey string
	FromEmail      string
	FromName       string
	ProductName    string
}

func NewMailConfig() *MailConfig {
	return &MailConfig{
		SendgridAPIKey: utils.GetEnvTrimmed("SENDGRID_API_KEY"),
		FromEmail:      utils.GetEnvTrimmedOrDefault("WAITLIST_FROM_EMAIL", "hello@launchwait.app"),
		FromName:       utils.GetEnvTrimmedOrDefault("WAITLIST_FROM_NAME", "LaunchWait"),
		ProductName:    utils.GetEnvTrimmedOrDefault("WAITLIST_PRODUCT_NAME", "LaunchWait"),
	}
}

func (mc *MailConfig) IsConfigured() bool {
	return mc.SendgridAPIKey != "" && mc.FromEmail != ""
}
