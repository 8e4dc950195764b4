package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLocator(t *testing.T) {
	valid := []struct {
		name    string
		locator string
		want    string
	}{
		{"raw id", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with params", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"live", "https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"music host", "https://music.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"surrounding whitespace", "  dQw4w9WgXcQ\n", "dQw4w9WgXcQ"},
	}

	for _, tc := range valid {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseLocator(tc.locator)
			assert.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	invalid := []struct {
		name    string
		locator string
	}{
		{"empty", ""},
		{"plain text", "never gonna give you up"},
		{"wrong host", "https://vimeo.com/12345"},
		{"watch without id", "https://www.youtube.com/watch"},
		{"id too short", "dQw4w9WgXc"},
		{"id with invalid chars", "dQw4w9WgXc!"},
		{"channel url", "https://www.youtube.com/@somechannel"},
	}

	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseLocator(tc.locator)
			assert.ErrorIs(t, err, ErrInvalidLocator)
		})
	}
}

func TestPlaylistID(t *testing.T) {
	t.Run("watch url with list param", func(t *testing.T) {
		id, ok := PlaylistID("https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PLdU2XZIhnGy9Nymk8armvA0nCzM9LX4Gf")
		assert.True(t, ok)
		assert.Equal(t, "PLdU2XZIhnGy9Nymk8armvA0nCzM9LX4Gf", id)
	})

	t.Run("playlist url", func(t *testing.T) {
		id, ok := PlaylistID("https://www.youtube.com/playlist?list=PLdU2XZIhnGy9Nymk8armvA0nCzM9LX4Gf")
		assert.True(t, ok)
		assert.Equal(t, "PLdU2XZIhnGy9Nymk8armvA0nCzM9LX4Gf", id)
	})

	t.Run("raw playlist id", func(t *testing.T) {
		id, ok := PlaylistID("PLdU2XZIhnGy9Nymk8armvA0nCzM9LX4Gf")
		assert.True(t, ok)
		assert.Equal(t, "PLdU2XZIhnGy9Nymk8armvA0nCzM9LX4Gf", id)
	})

	t.Run("plain watch url is not a playlist", func(t *testing.T) {
		_, ok := PlaylistID("https://www.youtube.com/watch?v=dQw4w9WgXcQ")
		assert.False(t, ok)
	})

	t.Run("video id is not a playlist", func(t *testing.T) {
		_, ok := PlaylistID("dQw4w9WgXcQ")
		assert.False(t, ok)
	})
}

func TestWatchURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/watch?v=dQw4w9WgXcQ", WatchURL("dQw4w9WgXcQ"))
}
