package auth

import "strings"

const bearerPrefix = "Bearer "

// BearerValue formats a token for the Authorization header, or returns "" for an empty token.
func BearerValue(token string) string {
	token = strings.TrimSpace(token)
	if token == "" {
		return ""
	}
	return bearerPrefix + token
}
