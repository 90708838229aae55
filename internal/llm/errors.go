package llm

import "strings"

// UserMessage maps an upstream failure to a message safe to show the
// caller, by pattern-matching the error text. The raw error stays in the
// logs only.
func UserMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "api key"):
		return "API configuration error. Please contact support."
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "429"):
		return "Rate limit exceeded. Please wait a moment and try again."
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded"):
		return "Request timed out. Please try again."
	case strings.Contains(msg, "network") || strings.Contains(msg, "connection refused"):
		return "Network error. Please check your connection and try again."
	case strings.Contains(msg, "401") || strings.Contains(msg, "unauthorized"):
		return "Authentication failed. Please check API configuration."
	default:
		return fallback
	}
}
