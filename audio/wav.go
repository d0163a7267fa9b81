package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// SampleRate is the rate every backend expects.
const SampleRate = 16000

// ErrInvalidWAV is returned when the input is not a RIFF/WAVE PCM file.
var ErrInvalidWAV = errors.New("audio: not a valid WAV file")

// Load reads a WAV file and returns mono samples at sampleRate.
func Load(path string, sampleRate int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audio: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f, sampleRate)
}

// Decode reads WAV data from r and returns mono samples at sampleRate.
func Decode(r io.ReadSeeker, sampleRate int) ([]float32, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("audio: rewind: %w", err)
	}
	dec = wav.NewDecoder(r)

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode: %w", err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels <= 0 {
		return nil, ErrInvalidWAV
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	mono := Downmix(buf.Data, buf.Format.NumChannels, bitDepth)
	return Resample(mono, buf.Format.SampleRate, sampleRate), nil
}

// Downmix averages interleaved integer PCM channels into normalized mono samples.
func Downmix(data []int, channels, bitDepth int) []float32 {
	if channels <= 0 {
		channels = 1
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float32(math.Pow(2, float64(bitDepth-1)))

	frames := len(data) / channels
	out := make([]float32, frames)
	for i := range frames {
		var sum int
		for c := range channels {
			sum += data[i*channels+c]
		}
		out[i] = float32(sum) / float32(channels) / scale
	}
	return out
}

// Resample converts samples between rates with linear interpolation.
// Equal or non-positive rates return the input unchanged.
func Resample(samples []float32, from, to int) []float32 {
	if from == to || from <= 0 || to <= 0 || len(samples) == 0 {
		return samples
	}
	n := int(int64(len(samples)) * int64(to) / int64(from))
	out := make([]float32, n)
	ratio := float64(from) / float64(to)
	last := len(samples) - 1
	for i := range n {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= last {
			out[i] = samples[last]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}
	return out
}

// EncodeWAV encodes mono samples as 16-bit PCM WAV.
func EncodeWAV(samples []float32, sampleRate int) ([]byte, error) {
	ws := &writeSeeker{}
	enc := wav.NewEncoder(ws, sampleRate, 16, 1, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(clamp(s) * 32767)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("audio: encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("audio: finalize: %w", err)
	}
	return ws.buf.Bytes(), nil
}

// Duration returns the length in seconds of samples at sampleRate.
func Duration(samples []float32, sampleRate int) float64 {
	if sampleRate <= 0 {
		return 0
	}
	return float64(len(samples)) / float64(sampleRate)
}

func clamp(s float32) float32 {
	switch {
	case s > 1:
		return 1
	case s < -1:
		return -1
	}
	return s
}

// writeSeeker is an in-memory io.WriteSeeker; the WAV encoder seeks back to patch headers.
type writeSeeker struct {
	buf bytes.Buffer
	pos int
}

func (w *writeSeeker) Write(p []byte) (int, error) {
	end := w.pos + len(p)
	if end > w.buf.Len() {
		w.buf.Grow(end - w.buf.Len())
		w.buf.Write(make([]byte, end-w.buf.Len()))
	}
	copy(w.buf.Bytes()[w.pos:end], p)
	w.pos = end
	return len(p), nil
}

func (w *writeSeeker) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = int64(w.pos)
	case io.SeekEnd:
		base = int64(w.buf.Len())
	default:
		return 0, fmt.Errorf("audio: invalid whence %d", whence)
	}
	next := base + offset
	if next < 0 {
		return 0, fmt.Errorf("audio: negative position %d", next)
	}
	w.pos = int(next)
	return next, nil
}
