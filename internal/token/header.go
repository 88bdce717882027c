package token

import "strings"

const bearerPrefix = "Bearer "

// ExtractFromHeader returns the token of an "Authorization: Bearer <token>" value.
func ExtractFromHeader(header string) (string, bool) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	tok := strings.TrimSpace(header[len(bearerPrefix):])
	if tok == "" || strings.ContainsAny(tok, " \t") {
		return "", false
	}
	return tok, true
}
