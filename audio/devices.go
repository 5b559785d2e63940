package audio

// Microphone reads raw PCM frames from a capture device. Read blocks until
// data is available, matching io.Reader semantics.
type Microphone interface {
	Read(p []byte) (n int, err error)
}

// Speaker renders raw PCM to an output device. Write is expected to block
// until the device buffer accepts the data (natural backpressure).
type Speaker interface {
	Write(p []byte) (n int, err error)
	Close() error
}

// SpeakerOpener acquires the output device. The playback sink calls it
// lazily, on the first frame.
type SpeakerOpener func() (Speaker, error)
