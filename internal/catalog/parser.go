package catalog

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseListing extracts track identifiers from a directory listing document.
// Links are resolved against the listing URL so both relative ("a.mp3") and
// absolute ("/songs/ncs/a.mp3") hrefs are accepted. The identifier is the
// escaped path after the folder prefix; links outside the folder, into
// subfolders, or without a playable extension are skipped.
func parseListing(doc *goquery.Document, listing *url.URL, extensions []string) []string {
	prefix := listing.EscapedPath()
	tracks := []string{}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, exists := s.Attr("href")
		if !exists {
			return
		}

		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			return
		}
		resolved := listing.ResolveReference(ref)
		if resolved.Host != listing.Host {
			return
		}

		path := resolved.EscapedPath()
		if !hasPlayableExtension(path, extensions) {
			return
		}

		_, track, found := strings.Cut(path, prefix)
		if !found || track == "" || strings.Contains(track, "/") {
			return
		}

		tracks = append(tracks, track)
	})

	return tracks
}

func hasPlayableExtension(path string, extensions []string) bool {
	lower := strings.ToLower(path)
	for _, ext := range extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// trackName returns the final path segment of a media source, which is how
// a loaded source is matched back to a track identifier.
func trackName(src string) string {
	if i := strings.LastIndex(src, "/"); i >= 0 {
		return src[i+1:]
	}
	return src
}

// IndexOf returns the playlist index of the track loaded as src, or -1.
func IndexOf(tracks []string, src string) int {
	if src == "" {
		return -1
	}
	name := trackName(src)
	for i, t := range tracks {
		if t == name {
			return i
		}
	}
	return -1
}
