package core

import (
	"net/url"
	"strings"
)

// PlatformID identifies a social platform.
type PlatformID string

const (
	PlatformYouTube   PlatformID = "youtube"
	PlatformInstagram PlatformID = "instagram"
	PlatformTikTok    PlatformID = "tiktok"
)

// handleSlot is replaced with the handle when building a profile URL.
const handleSlot = "{handle}"

// Platform describes a social platform probed for handle availability.
type Platform struct {
	ID          PlatformID `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	URLTemplate string     `json:"url_template" yaml:"url_template"`
}

// SocialPlatforms lists the platforms checked by default, in result order.
var SocialPlatforms = []Platform{
	{ID: PlatformYouTube, Name: "YouTube", URLTemplate: "https://www.youtube.com/@{handle}"},
	{ID: PlatformInstagram, Name: "Instagram", URLTemplate: "https://www.instagram.com/{handle}"},
	{ID: PlatformTikTok, Name: "TikTok", URLTemplate: "https://www.tiktok.com/@{handle}"},
}

// ProfileURL fills the handle into the platform's URL template.
func (p Platform) ProfileURL(handle string) string {
	return strings.Replace(p.URLTemplate, handleSlot, url.PathEscape(handle), 1)
}

// FindPlatform looks up a built-in platform by ID or display name.
func FindPlatform(id string) (Platform, bool) {
	needle := strings.ToLower(strings.TrimSpace(id))
	if needle == "" {
		return Platform{}, false
	}

	for _, platform := range SocialPlatforms {
		if string(platform.ID) == needle || strings.EqualFold(platform.Name, needle) {
			return platform, true
		}
	}

	return Platform{}, false
}
