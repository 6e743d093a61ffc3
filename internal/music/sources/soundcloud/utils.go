package soundcloud

import (
	"net/url"
	"strings"
)

func isSoundCloudURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	host := strings.TrimPrefix(u.Hostname(), "www.")
	host = strings.TrimPrefix(host, "m.")
	return host == "soundcloud.com" || host == "on.soundcloud.com"
}

// cleanURL drops query and fragment (tracking and share parameters).
func cleanURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
