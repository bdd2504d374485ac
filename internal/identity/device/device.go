// Package device derives human-readable device names from User-Agent strings
// for session records.
package device

import (
	"fmt"
	"strings"

	"github.com/mssola/useragent"
)

// ParseUserAgent returns a short display name like "Chrome on Mac OS X".
func ParseUserAgent(rawUserAgent string) string {
	if strings.TrimSpace(rawUserAgent) == "" {
		return "Unknown Device"
	}

	ua := useragent.New(rawUserAgent)
	browser, _ := ua.Browser()
	os := ua.OSInfo().Name
	if os == "" {
		os = ua.Platform()
	}

	switch {
	case browser != "" && os != "":
		return fmt.Sprintf("%s on %s", browser, os)
	case browser != "":
		return browser
	case os != "":
		return os
	default:
		return "Unknown Device"
	}
}
