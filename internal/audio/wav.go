// Package audio holds small helpers for the WAV payloads that move through
// the speech adapters.
package audio

import (
	"bytes"
	"encoding/binary"
)

// ContentTypeWAV is the MIME type used for WAV payloads.
const ContentTypeWAV = "audio/wav"

// Format describes raw PCM samples.
type Format struct {
	SampleRate     int
	Channels       int
	BytesPerSample int
}

// DefaultFormat is 16-bit mono at 22050 Hz, what Piper voices emit.
var DefaultFormat = Format{SampleRate: 22050, Channels: 1, BytesPerSample: 2}

// PCMToWAV wraps little-endian PCM data in a 44-byte WAV header.
func PCMToWAV(pcm []byte, f Format) []byte {
	dataLen := len(pcm)

	buf := &bytes.Buffer{}
	buf.Grow(44 + dataLen)

	// RIFF header; the size excludes the first 8 bytes.
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.Channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(f.SampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(f.SampleRate*f.Channels*f.BytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.Channels*f.BytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(f.BytesPerSample*8))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(pcm)

	return buf.Bytes()
}

// Silence returns a WAV file holding n bytes of zeroed PCM frame data.
func Silence(n int) []byte {
	return PCMToWAV(make([]byte, n), DefaultFormat)
}
