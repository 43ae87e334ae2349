package config

import "net/url"

// redactURL hides the password in connection URLs shown to users.
// Strings that are not URLs with credentials are returned unchanged.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); !ok {
		return raw
	}
	return u.Redacted()
}
