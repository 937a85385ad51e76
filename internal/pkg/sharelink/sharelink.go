// Package sharelink rewrites cloud-drive share links into URLs an <img> tag
// can load directly.
package sharelink

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"
)

var driveFilePath = regexp.MustCompile(`/file/d/([^/?#]+)`)

// Normalize returns the direct-view form of a Google Drive or OneDrive share
// link. Anything else, including unparsable input, is returned unchanged.
func Normalize(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}

	switch strings.ToLower(u.Hostname()) {
	case "drive.google.com":
		if m := driveFilePath.FindStringSubmatch(u.Path); m != nil {
			return driveView(m[1])
		}
		if id := u.Query().Get("id"); id != "" {
			return driveView(id)
		}
	case "1drv.ms":
		token := base64.RawURLEncoding.EncodeToString([]byte(raw))
		return "https://api.onedrive.com/v1.0/shares/u!" + token + "/root/content"
	case "onedrive.live.com":
		q := u.Query()
		cid, resid := q.Get("cid"), q.Get("resid")
		if cid == "" || resid == "" {
			return raw
		}
		out := "https://onedrive.live.com/download?cid=" + url.QueryEscape(cid) + "&resid=" + url.QueryEscape(resid)
		if authkey := q.Get("authkey"); authkey != "" {
			out += "&authkey=" + url.QueryEscape(authkey)
		}
		return out
	}
	return raw
}

func driveView(id string) string {
	return "https://drive.google.com/uc?export=view&id=" + url.QueryEscape(id)
}
