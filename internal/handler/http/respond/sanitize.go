package respond

import (
	"regexp"
)

var (
	slackWebhookPattern   = regexp.MustCompile(`hooks\.slack\.com/services/[A-Za-z0-9/_-]+`)
	discordWebhookPattern = regexp.MustCompile(`(discord(?:app)?\.com/api/webhooks/\d+)/[A-Za-z0-9_-]+`)
	userInfoPattern       = regexp.MustCompile(`://([^:/@\s]+):([^@/\s]+)@`)
)

// SanitizeError returns err's message with webhook tokens and URL passwords masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return Sanitize(err.Error())
}

// Sanitize masks secrets in msg.
func Sanitize(msg string) string {
	msg = slackWebhookPattern.ReplaceAllString(msg, "hooks.slack.com/services/****")
	msg = discordWebhookPattern.ReplaceAllString(msg, "$1/****")
	msg = userInfoPattern.ReplaceAllString(msg, "://$1:****@")
	return msg
}
