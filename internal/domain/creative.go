package domain

import "strings"

// imageExtensions are the recognized displayable file extensions.
var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg"}

// DisplayableImage classifies a creative reference into a displayable image
// reference. A reference is displayable when it is an embedded data URL of
// an image or video type, or a remote reference whose path ends in a
// recognized image extension behind an http(s) or ipfs scheme. Any other
// form yields ("", false), leaving the raw reference available for other
// uses.
func DisplayableImage(creativeRef string) (string, bool) {
	if creativeRef == "" {
		return "", false
	}

	if strings.HasPrefix(creativeRef, "data:image/") || strings.HasPrefix(creativeRef, "data:video/") {
		return creativeRef, true
	}

	lower := strings.ToLower(creativeRef)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(lower, ext) {
			if strings.HasPrefix(creativeRef, "http://") ||
				strings.HasPrefix(creativeRef, "https://") ||
				strings.HasPrefix(creativeRef, "ipfs://") {
				return creativeRef, true
			}
			return "", false
		}
	}

	return "", false
}
