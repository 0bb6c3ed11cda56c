package config

import "testing"

func TestMailConfig_DisabledWithoutKey(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", "")

	if NewMailConfig().IsConfigured() {
		t.Fatalf("expected mail to be disabled without SENDGRID_API_KEY")
	}
}

func TestMailConfig_FromEnv(t *testing.T) {
	t.Setenv("SENDGRID_API_KEY", " SG.test-key ")
	t.Setenv("WAITLIST_FROM_EMAIL", "team@example.com")
	t.Setenv("WAITLIST_FROM_NAME", "")

	mc := NewMailConfig()
	if !mc.IsConfigured() {
		t.Fatalf("expected mail to be configured")
	}
	if mc.SendgridAPIKey != "SG.test-key" {
		t.Fatalf("expected trimmed key, got %q", mc.SendgridAPIKey)
	}
	if mc.FromEmail != "team@example.com" || mc.FromName != "LaunchWait" {
		t.Fatalf("unexpected sender %q <%s>", mc.FromName, mc.FromEmail)
	}
}
