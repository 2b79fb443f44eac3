// cmd/preflight/main.go
package main

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/hamed0406/statuspage/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg, err := config.Load()
	if err != nil {
		fail("reading .env: " + err.Error())
	}

	if len(cfg.AdminAPIKeys) == 0 {
		fail("ADMIN_API_KEYS is empty (admin routes will 401).")
	}
	if len(cfg.PublicAPIKeys) == 0 {
		fail("PUBLIC_API_KEYS is empty (JSON read routes will 401).")
	}
	for _, name := range []string{"ADMIN_API_KEYS", "PUBLIC_API_KEYS"} {
		if strings.Contains(os.Getenv(name), " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	ok("listen address " + cfg.Addr)

	switch {
	case cfg.DatabaseURL != "":
		ok("DATABASE_URL present (Postgres store)")
	case cfg.SQLitePath != "":
		ok("SQLITE_PATH=" + cfg.SQLitePath)
	default:
		warn("DATABASE_URL and SQLITE_PATH empty; results are kept in memory only.")
	}

	if u, err := url.Parse(cfg.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		warn("HOST_PROTOCOL/HOST_DOMAIN do not form an absolute URL; confirmation links will be broken.")
	} else {
		ok("public URL " + cfg.PublicBaseURL)
	}

	if !cfg.Update || cfg.CheckInterval == 0 {
		warn("scheduler disabled (UPDATE=false or CHECK_INTERVAL_MS=0); no probes will run.")
	} else {
		ok(fmt.Sprintf("checking every %s, %d at a time", cfg.CheckInterval, cfg.MaxConcurrentChecks))
	}

	if cfg.SMTP2GOAPIKey == "" || cfg.AlertEmail == "" {
		warn("SMTP2GO_API_KEY or ALERT_EMAIL empty; email alerts and subscriptions are disabled.")
	} else {
		ok("email alerts from " + cfg.AlertEmail)
	}
	if cfg.SMSNotifications {
		if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFrom == "" {
			fail("SMS_NOTIFICATIONS=true but TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN or TWILIO_FROM is missing.")
		}
		ok("SMS alerts enabled")
	}
	if cfg.SlackWebhookURL != "" {
		ok("Slack alerts enabled")
	}

	if len(cfg.AllowedOrigins) == 0 || cfg.AllowedOrigins[0] == "*" {
		warn("ALLOWED_ORIGINS allows every origin.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	ok("preflight passed")
}
