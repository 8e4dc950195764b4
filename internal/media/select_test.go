package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectStreams(t *testing.T) {
	t.Run("picks highest bitrate video and audio", func(t *testing.T) {
		m := Manifest{
			VideoOnly: []Stream{
				{URL: "v-500", Bitrate: 500},
				{URL: "v-1200", Bitrate: 1200},
				{URL: "v-800", Bitrate: 800},
			},
			AudioOnly: []Stream{
				{URL: "a-128", Bitrate: 128},
				{URL: "a-256", Bitrate: 256},
			},
		}

		video, audio, err := SelectStreams(m)

		assert.NoError(t, err)
		assert.Equal(t, "v-1200", video.URL)
		assert.Equal(t, 1200, video.Bitrate)
		assert.Equal(t, "a-256", audio.URL)
		assert.Equal(t, 256, audio.Bitrate)
	})

	t.Run("no video streams", func(t *testing.T) {
		m := Manifest{
			AudioOnly: []Stream{{URL: "a", Bitrate: 128}},
		}

		_, _, err := SelectStreams(m)

		assert.ErrorIs(t, err, ErrNoVideoStream)
	})

	t.Run("no audio streams", func(t *testing.T) {
		m := Manifest{
			VideoOnly: []Stream{{URL: "v", Bitrate: 500}},
		}

		_, _, err := SelectStreams(m)

		assert.ErrorIs(t, err, ErrNoAudioStream)
	})

	t.Run("empty manifest reports video first", func(t *testing.T) {
		_, _, err := SelectStreams(Manifest{})

		assert.ErrorIs(t, err, ErrNoVideoStream)
	})

	t.Run("equal bitrates keep the earlier stream", func(t *testing.T) {
		m := Manifest{
			VideoOnly: []Stream{
				{URL: "v-first", Bitrate: 900},
				{URL: "v-second", Bitrate: 900},
			},
			AudioOnly: []Stream{{URL: "a", Bitrate: 160}},
		}

		video, _, err := SelectStreams(m)

		assert.NoError(t, err)
		assert.Equal(t, "v-first", video.URL)
	})
}
