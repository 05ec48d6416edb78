// Package cookies holds the upstream session credentials shared by every request.
package cookies

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"yt-clipper/domain/video"
)

// exportedCookie is one entry of a browser cookie export, the format the
// credential blob is stored in
type exportedCookie struct {
	Name           string   `json:"name"`
	Value          string   `json:"value"`
	Domain         string   `json:"domain"`
	Path           string   `json:"path"`
	ExpirationDate *float64 `json:"expirationDate"`
	Secure         bool     `json:"secure"`
	HTTPOnly       bool     `json:"httpOnly"`
	HostOnly       bool     `json:"hostOnly"`
}

// Cookie is a session cookie together with the host it belongs to
type Cookie struct {
	http.Cookie
	Host string
}

// Parse decodes a JSON cookie export.
// Entries without a name or domain are skipped; an export with no usable cookie is an error.
func Parse(data []byte) ([]Cookie, error) {
	var exported []exportedCookie
	if err := json.Unmarshal(data, &exported); err != nil {
		return nil, fmt.Errorf("%w: cookie file is not a JSON cookie list: %v", video.ErrConfiguration, err)
	}

	cookies := make([]Cookie, 0, len(exported))
	for _, e := range exported {
		if e.Name == "" || e.Domain == "" {
			continue
		}

		c := Cookie{Host: strings.TrimPrefix(e.Domain, ".")}
		c.Cookie = http.Cookie{
			Name:     e.Name,
			Value:    e.Value,
			Domain:   e.Domain,
			Path:     e.Path,
			Secure:   e.Secure,
			HttpOnly: e.HTTPOnly,
		}
		if c.Path == "" {
			c.Path = "/"
		}
		if e.HostOnly {
			c.Domain = ""
		}
		if e.ExpirationDate != nil {
			sec, frac := math.Modf(*e.ExpirationDate)
			c.Expires = time.Unix(int64(sec), int64(frac*1e9)).UTC()
		}
		cookies = append(cookies, c)
	}

	if len(cookies) == 0 {
		return nil, fmt.Errorf("%w: cookie file contains no cookies", video.ErrConfiguration)
	}
	return cookies, nil
}
