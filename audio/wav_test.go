package audio

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func sine(n, rate int, freq float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return out
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	in := sine(1600, SampleRate, 440)
	data, err := EncodeWAV(in, SampleRate)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) {
		t.Fatalf("expected RIFF header, got %q", data[:4])
	}

	out, err := Decode(bytes.NewReader(data), SampleRate)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("expected %d samples, got %d", len(in), len(out))
	}
	for i := range in {
		if d := math.Abs(float64(in[i] - out[i])); d > 1e-3 {
			t.Fatalf("sample %d differs by %f", i, d)
		}
	}
}

func TestLoad_ResamplesTo16k(t *testing.T) {
	data, err := EncodeWAV(sine(8000, 8000, 220), 8000)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	path := filepath.Join(t.TempDir(), "in.wav")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := Load(path, SampleRate)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(out) != 16000 {
		t.Errorf("expected 16000 samples after resampling, got %d", len(out))
	}
	if got := Duration(out, SampleRate); math.Abs(got-1.0) > 1e-9 {
		t.Errorf("expected 1s, got %f", got)
	}
}

func TestDecode_RejectsGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("definitely not audio")), SampleRate); err == nil {
		t.Fatal("expected error for non-WAV input")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.wav"), SampleRate); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDownmix(t *testing.T) {
	out := Downmix([]int{16384, -16384, 32767, 32767}, 2, 16)
	if len(out) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(out))
	}
	if out[0] != 0 {
		t.Errorf("expected silence for opposite channels, got %f", out[0])
	}
	if math.Abs(float64(out[1])-1) > 1e-3 {
		t.Errorf("expected ~1.0, got %f", out[1])
	}
}

func TestResample(t *testing.T) {
	in := []float32{0, 1, 0, -1}
	if got := Resample(in, 16000, 16000); len(got) != 4 {
		t.Errorf("same rate should be identity, got %v", got)
	}
	up := Resample(in, 8000, 16000)
	if len(up) != 8 {
		t.Fatalf("expected 8 samples, got %d", len(up))
	}
	if up[1] != 0.5 {
		t.Errorf("expected interpolated 0.5, got %f", up[1])
	}
}
