package httputil

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// validFolderPattern matches server folder paths: path segments of letters,
// digits, dots, spaces, underscores and hyphens separated by slashes.
var validFolderPattern = regexp.MustCompile(`^[a-zA-Z0-9._ -]+(/[a-zA-Z0-9._ -]+)*$`)

// ValidateURL checks that a URL is well-formed and uses HTTP or HTTPS.
// Plain HTTP is allowed because listing servers usually run on the local network.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("malformed URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("only HTTP(S) URLs are allowed, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL has no host")
	}
	return nil
}

// ValidateFolder checks that a folder path is safe to append to the base URL.
func ValidateFolder(folder string) error {
	if folder == "" {
		return fmt.Errorf("folder cannot be empty")
	}
	if len(folder) > 256 {
		return fmt.Errorf("folder too long: %d characters", len(folder))
	}
	if !validFolderPattern.MatchString(folder) {
		return fmt.Errorf("folder contains invalid characters: %q", folder)
	}
	for _, seg := range strings.Split(folder, "/") {
		if seg == "." || seg == ".." {
			return fmt.Errorf("folder contains path traversal: %q", folder)
		}
	}
	return nil
}

// FolderURL returns the listing URL for a folder, always with a trailing slash.
// Each path segment is escaped.
func FolderURL(base, folder string) string {
	u := strings.TrimRight(base, "/")
	for _, seg := range strings.Split(folder, "/") {
		u += "/" + url.PathEscape(seg)
	}
	return u + "/"
}

// TrackURL returns the media source for a track. The track identifier is
// appended as-is: it is already in the encoded form the listing served.
func TrackURL(base, folder, track string) string {
	return FolderURL(base, folder) + track
}
