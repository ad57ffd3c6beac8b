package config

import (
	"os"
	"strings"
)

// AuthDebug enables verbose logging on the auth/session path.
//
// Set via env:
// - AUTH_DEBUG=true
func AuthDebug() bool {
	return boolFlag("AUTH_DEBUG")
}

// DriveModeEnabled gates the voice drive-mode chat endpoints.
//
// Set via env:
// - DRIVE_MODE_ENABLED=true
func DriveModeEnabled() bool {
	return boolFlag("DRIVE_MODE_ENABLED")
}

// BillRemindersEnabled gates the bill-due reminder outbox. When off, reminder
// events are still written but the dispatcher skips publishing them.
//
// Set via env:
// - BILL_REMINDERS_ENABLED=true
func BillRemindersEnabled() bool {
	return boolFlag("BILL_REMINDERS_ENABLED")
}

func boolFlag(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
