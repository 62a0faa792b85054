package models

import "strings"

const profileURLPrefix = "https://www.instagram.com/"

// NormalizeIdentity converts a free-text handle into its canonical form:
// surrounding whitespace removed, leading "@" characters stripped.
// Idempotent, so it is safe to apply on every boundary crossing.
func NormalizeIdentity(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimLeft(s, "@")
	return strings.TrimSpace(s)
}

// ProfileURL derives the public profile link for a canonical identity.
func ProfileURL(identity string) string {
	return profileURLPrefix + identity
}
