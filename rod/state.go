package rod

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/metis"
	"github.com/go-rod/rod/lib/proto"
)

// storedCookie is a cookie as written by browser automation tools when they
// export a logged-in session.
type storedCookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// LoadCookies reads a saved authentication state file. The file holds either
// a JSON array of cookies or a storage-state object with a "cookies" array.
// A missing file is reported with the underlying os error.
func LoadCookies(path string) ([]*proto.NetworkCookieParam, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var stored []storedCookie
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var state struct {
			Cookies []storedCookie `json:"cookies"`
		}
		if err := json.Unmarshal(trimmed, &state); err != nil {
			return nil, metis.Errorf(metis.EINVALID, "malformed auth state %s: %v", path, err)
		}
		stored = state.Cookies
	} else if err := json.Unmarshal(trimmed, &stored); err != nil {
		return nil, metis.Errorf(metis.EINVALID, "malformed auth state %s: %v", path, err)
	}

	cookies := make([]*proto.NetworkCookieParam, 0, len(stored))
	for _, c := range stored {
		if c.Name == "" {
			continue
		}
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
		}
		if c.Expires > 0 {
			p.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		switch c.SameSite {
		case "Strict", "Lax", "None":
			p.SameSite = proto.NetworkCookieSameSite(c.SameSite)
		}
		cookies = append(cookies, p)
	}
	return cookies, nil
}

// SaveCookies writes cookies to path as a storage-state object that
// LoadCookies reads back. The file is readable by its owner only.
func SaveCookies(path string, cookies []*proto.NetworkCookie) error {
	var state struct {
		Cookies []storedCookie `json:"cookies"`
	}
	state.Cookies = make([]storedCookie, 0, len(cookies))
	for _, c := range cookies {
		state.Cookies = append(state.Cookies, storedCookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  float64(c.Expires),
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		})
	}

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
