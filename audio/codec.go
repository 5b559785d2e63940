// Package audio holds the PCM transport codec, the microphone capture loop
// and the playback sink. Capture runs at 16kHz mono 16-bit; playback at
// 24kHz mono 16-bit.
package audio

import "encoding/base64"

// EncodeChunk converts a raw PCM buffer to its text-safe transport encoding
// (standard base64, no line wrapping).
func EncodeChunk(pcm []byte) string {
	return base64.StdEncoding.EncodeToString(pcm)
}

// DecodeChunk reverses EncodeChunk. Round-tripping yields byte-identical output.
func DecodeChunk(encoded string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(encoded)
}
