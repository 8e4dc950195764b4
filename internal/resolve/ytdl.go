package resolve

import (
	"context"
	"net/http"
	"strings"
	"time"

	youtube "github.com/lvcoi/ytdl-lib/v2"

	"github.com/yukirin-dev/douga/internal/config"
	"github.com/yukirin-dev/douga/internal/log"
	"github.com/yukirin-dev/douga/internal/media"
)

// YTDL resolves locators through the ytdl extraction library.  It is the
// only place the library's types appear; everything else works with the
// media package.
type YTDL struct {
	client *youtube.Client
	http   *http.Client
}

// Compile-time check: *YTDL must implement Resolver
var _ Resolver = (*YTDL)(nil)

// NewYTDL builds a resolver using the configured client identity.
// The android identity usually returns direct stream URLs, web needs
// signature deciphering, which the library handles either way.
func NewYTDL(cfg config.ResolverConfig) *YTDL {
	httpClient := &http.Client{
		Timeout: 2 * time.Minute,
	}

	client := &youtube.Client{
		HTTPClient: httpClient,
	}

	identity := clientIdentity(cfg.Client)
	client.ClientType = &identity

	return &YTDL{
		client: client,
		http:   httpClient,
	}
}

func clientIdentity(name string) youtube.ClientInfo {
	switch strings.ToLower(name) {
	case "web":
		return youtube.WebClient
	default:
		return youtube.AndroidClient
	}
}

// Resolve fetches the video metadata and builds the stream manifest
func (r *YTDL) Resolve(ctx context.Context, locator string) (*media.Descriptor, *media.Manifest, error) {
	videoID, err := ParseLocator(locator)
	if err != nil {
		return nil, nil, &ResolveError{Locator: locator, Err: err}
	}

	log.Debug("Resolving video", "video_id", videoID)
	video, err := r.client.GetVideoContext(ctx, WatchURL(videoID))
	if err != nil {
		return nil, nil, &ResolveError{Locator: locator, Err: err}
	}

	descriptor := descriptorFromVideo(video)
	manifest := r.manifestFromVideo(ctx, video)
	log.Debug("Resolved video",
		"video_id", descriptor.ID,
		"title", descriptor.Title,
		"video_streams", len(manifest.VideoOnly),
		"audio_streams", len(manifest.AudioOnly))

	return descriptor, manifest, nil
}

// ResolvePlaylist fetches playlist metadata for queueing.  Entries are
// lightweight references; each one still needs a Resolve call of its own
// before playback.
func (r *YTDL) ResolvePlaylist(ctx context.Context, locator string) (string, []media.Entry, error) {
	playlistID, ok := PlaylistID(locator)
	if !ok {
		return "", nil, &ResolveError{Locator: locator, Err: ErrInvalidLocator}
	}

	log.Debug("Resolving playlist", "playlist_id", playlistID)
	playlist, err := r.client.GetPlaylistContext(ctx, playlistID)
	if err != nil {
		return "", nil, &ResolveError{Locator: locator, Err: err}
	}

	entries := make([]media.Entry, 0, len(playlist.Videos))
	for _, v := range playlist.Videos {
		entries = append(entries, media.Entry{
			ID:       v.ID,
			Title:    v.Title,
			Author:   v.Author,
			Duration: v.Duration,
		})
	}
	return playlist.Title, entries, nil
}

// Close releases idle connections held by the underlying HTTP client
func (r *YTDL) Close() error {
	r.http.CloseIdleConnections()
	return nil
}

func descriptorFromVideo(video *youtube.Video) *media.Descriptor {
	return &media.Descriptor{
		ID:        video.ID,
		Title:     video.Title,
		Author:    video.Author,
		Duration:  video.Duration,
		Thumbnail: largestThumbnail(video),
	}
}

func largestThumbnail(video *youtube.Video) string {
	var best string
	bestWidth := -1
	for _, t := range video.Thumbnails {
		if int(t.Width) > bestWidth {
			best = t.URL
			bestWidth = int(t.Width)
		}
	}
	return best
}

// manifestFromVideo maps the library's format list onto the manifest.
// Muxed formats are skipped; playback always pairs one video-only stream
// with one audio-only stream.  Formats whose URL cannot be produced are
// dropped rather than failing the whole resolution.
func (r *YTDL) manifestFromVideo(ctx context.Context, video *youtube.Video) *media.Manifest {
	manifest := &media.Manifest{}
	for i := range video.Formats {
		format := &video.Formats[i]

		videoOnly := isVideoOnly(format)
		audioOnly := isAudioOnly(format)
		if !videoOnly && !audioOnly {
			continue
		}

		streamURL := format.URL
		if streamURL == "" {
			resolved, err := r.client.GetStreamURLContext(ctx, video, format)
			if err != nil {
				log.Debug("Skipping undecipherable format", "itag", format.ItagNo, "error", err)
				continue
			}
			streamURL = resolved
		}

		stream := media.Stream{
			URL:      streamURL,
			MimeType: format.MimeType,
			Bitrate:  formatBitrate(format),
			Itag:     format.ItagNo,
		}

		if videoOnly {
			stream.Quality = format.QualityLabel
			manifest.VideoOnly = append(manifest.VideoOnly, stream)
		} else {
			stream.Quality = format.AudioQuality
			manifest.AudioOnly = append(manifest.AudioOnly, stream)
		}
	}
	return manifest
}

func isVideoOnly(f *youtube.Format) bool {
	return strings.HasPrefix(f.MimeType, "video/") && f.AudioChannels == 0
}

func isAudioOnly(f *youtube.Format) bool {
	return strings.HasPrefix(f.MimeType, "audio/")
}

// formatBitrate prefers the average bitrate, which reflects actual
// stream size better than the nominal itag bitrate
func formatBitrate(f *youtube.Format) int {
	if f.AverageBitrate > 0 {
		return f.AverageBitrate
	}
	return f.Bitrate
}
