package media

import "errors"

var (
	// ErrNoVideoStream means the manifest contained no video-only streams
	ErrNoVideoStream = errors.New("no suitable video stream found")
	// ErrNoAudioStream means the manifest contained no audio-only streams
	ErrNoAudioStream = errors.New("no suitable audio stream found")
)

// SelectStreams picks the streams to hand to the player: the highest
// bitrate video-only stream and the highest bitrate audio-only stream.
// Earlier entries win ties so selection is stable for equal bitrates.
func SelectStreams(m Manifest) (video Stream, audio Stream, err error) {
	video, err = highestBitrate(m.VideoOnly, ErrNoVideoStream)
	if err != nil {
		return Stream{}, Stream{}, err
	}
	audio, err = highestBitrate(m.AudioOnly, ErrNoAudioStream)
	if err != nil {
		return Stream{}, Stream{}, err
	}
	return video, audio, nil
}

func highestBitrate(streams []Stream, empty error) (Stream, error) {
	if len(streams) == 0 {
		return Stream{}, empty
	}
	best := streams[0]
	for _, s := range streams[1:] {
		if s.Bitrate > best.Bitrate {
			best = s
		}
	}
	return best, nil
}
