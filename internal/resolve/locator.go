package resolve

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidLocator means the input cannot be understood as a video reference
var ErrInvalidLocator = errors.New("not a recognisable video locator")

var (
	videoIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	playlistIDPattern = regexp.MustCompile(`^(PL|UU|LL|FL|OLAK5uy_)[A-Za-z0-9_-]{10,}$`)
)

// ParseLocator extracts the video ID from a locator.  Accepted shapes are
// raw 11 character video IDs and the usual URL forms: watch?v=, youtu.be/,
// shorts/, embed/, live/ and v/ paths, with or without a scheme.
func ParseLocator(locator string) (string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", ErrInvalidLocator
	}

	if videoIDPattern.MatchString(locator) {
		return locator, nil
	}

	u, err := url.Parse(withScheme(locator))
	if err != nil || !isYouTubeHost(u.Host) {
		return "", ErrInvalidLocator
	}

	if id := videoIDFromURL(u); videoIDPattern.MatchString(id) {
		return id, nil
	}
	return "", ErrInvalidLocator
}

// PlaylistID extracts the playlist ID from a locator, reporting whether
// the locator refers to a playlist at all.  A watch URL with a list
// parameter counts as a playlist locator.
func PlaylistID(locator string) (string, bool) {
	locator = strings.TrimSpace(locator)
	if playlistIDPattern.MatchString(locator) {
		return locator, true
	}

	u, err := url.Parse(withScheme(locator))
	if err != nil || !isYouTubeHost(u.Host) {
		return "", false
	}

	if id := u.Query().Get("list"); playlistIDPattern.MatchString(id) {
		return id, true
	}
	return "", false
}

// WatchURL builds the canonical watch URL for a video ID
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// withScheme makes scheme-less input parseable by net/url.  A raw ID never
// reaches here with a dot or slash, so this only affects URL-ish input.
func withScheme(locator string) string {
	if strings.Contains(locator, "://") {
		return locator
	}
	return "https://" + locator
}

func isYouTubeHost(host string) bool {
	host = strings.ToLower(host)
	switch host {
	case "youtube.com", "www.youtube.com", "m.youtube.com", "music.youtube.com",
		"youtube-nocookie.com", "www.youtube-nocookie.com", "youtu.be":
		return true
	}
	return false
}

func videoIDFromURL(u *url.URL) string {
	if strings.EqualFold(u.Host, "youtu.be") {
		return strings.Trim(u.Path, "/")
	}

	path := strings.Trim(u.Path, "/")
	switch {
	case path == "watch":
		return u.Query().Get("v")
	case strings.HasPrefix(path, "shorts/"),
		strings.HasPrefix(path, "embed/"),
		strings.HasPrefix(path, "live/"),
		strings.HasPrefix(path, "v/"):
		parts := strings.SplitN(path, "/", 2)
		if len(parts) == 2 {
			// Drop anything after a further slash
			return strings.SplitN(parts[1], "/", 2)[0]
		}
	}
	return ""
}
