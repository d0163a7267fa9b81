package warmup

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kbukum/whisperkit/audio"
	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/testutil"
	"github.com/kbukum/whisperkit/transcription"
)

func strPtr(s string) *string { return &s }

func staticAsset(path string) AssetProvider {
	return AssetFunc(func(context.Context) (string, error) { return path, nil })
}

func failingAsset(err error) AssetProvider {
	return AssetFunc(func(context.Context) (string, error) { return "", err })
}

func TestRun(t *testing.T) {
	sample := testutil.WriteWAV(t, testutil.Tone(1, 0.3))
	empty := filepath.Join(t.TempDir(), "empty.wav")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	garbage := filepath.Join(t.TempDir(), "garbage.wav")
	if err := os.WriteFile(garbage, []byte("not a wav file at all"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		assets     AssetProvider
		warmupFile *string
		backendErr error
		want       bool
		wantCalls  int
	}{
		{"explicit opt-out", staticAsset(sample), strPtr(""), nil, false, 0},
		{"default asset", staticAsset(sample), nil, nil, true, 1},
		{"explicit file", failingAsset(fmt.Errorf("unused")), &sample, nil, true, 1},
		{"asset fetch fails", failingAsset(errors.NetworkTimeout("download", nil)), nil, nil, false, 0},
		{"missing file", nil, strPtr(filepath.Join(t.TempDir(), "missing.wav")), nil, false, 0},
		{"zero-length file", nil, &empty, nil, false, 0},
		{"undecodable file", nil, &garbage, nil, false, 0},
		{"inference fails", staticAsset(sample), nil, fmt.Errorf("out of memory"), false, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := testutil.NewBackend(transcription.KindFasterWhisper).FailWith(tc.backendErr)
			r := NewRunner(tc.assets, logger.Nop())
			if got := r.Run(context.Background(), b, tc.warmupFile); got != tc.want {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
			if b.Calls() != tc.wantCalls {
				t.Errorf("expected %d inference calls, got %d", tc.wantCalls, b.Calls())
			}
		})
	}
}

func TestRun_RecoversFromPanic(t *testing.T) {
	sample := testutil.WriteWAV(t, testutil.Tone(0.5, 0.3))
	b := testutil.NewBackend(transcription.KindMLXWhisper).PanicOnTranscribe()
	if NewRunner(staticAsset(sample), logger.Nop()).Run(context.Background(), b, nil) {
		t.Fatal("expected false after backend panic")
	}
}

func TestRun_PrefersWarmer(t *testing.T) {
	sample := testutil.WriteWAV(t, testutil.Tone(0.5, 0.3))
	w := testutil.NewWarmingBackend(transcription.KindSimulStreaming)

	ok := NewRunner(staticAsset(sample), logger.Nop()).Run(context.Background(), transcription.Serialize(w, 0), nil)
	if !ok {
		t.Fatal("expected warmup to succeed")
	}
	if w.Warmups() != 1 || w.Calls() != 0 {
		t.Errorf("expected Warmup instead of Transcribe, got warmups=%d calls=%d", w.Warmups(), w.Calls())
	}
}

func TestRemoteFetch(t *testing.T) {
	wav, err := audio.EncodeWAV(testutil.Tone(0.25, 0.3), audio.SampleRate)
	if err != nil {
		t.Fatal(err)
	}
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(wav)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "cache", cacheFileName)
	assets := Chain(LocalCache(path), RemoteFetch(srv.URL+"/jfk.wav", path, time.Second))

	for i := 0; i < 2; i++ {
		got, err := assets.Fetch(context.Background())
		if err != nil {
			t.Fatalf("Fetch #%d: %v", i, err)
		}
		if got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("expected one download then cache hits, got %d downloads", hits.Load())
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("expected temp file to be renamed away, stat err=%v", err)
	}
}

func TestRemoteFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), cacheFileName)
	start := time.Now()
	_, err := RemoteFetch(srv.URL, path, 50*time.Millisecond).Fetch(context.Background())
	if !errors.HasCode(err, errors.ErrCodeNetworkTimeout) {
		t.Fatalf("expected NETWORK_TIMEOUT, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Errorf("expected the deadline to bound the download, took %v", time.Since(start))
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("expected no cached file after timeout")
	}
}

func TestRemoteFetch_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := RemoteFetch(srv.URL, filepath.Join(t.TempDir(), cacheFileName), time.Second).Fetch(context.Background())
	if !errors.HasCode(err, errors.ErrCodeExternalService) {
		t.Fatalf("expected EXTERNAL_SERVICE_ERROR, got %v", err)
	}
}

func TestChain_AllFail(t *testing.T) {
	_, err := Chain(failingAsset(fmt.Errorf("a")), failingAsset(fmt.Errorf("b"))).Fetch(context.Background())
	if err == nil || err.Error() != "b" {
		t.Errorf("expected last error, got %v", err)
	}
	if _, err := Chain().Fetch(context.Background()); err == nil {
		t.Error("expected error from empty chain")
	}
}

func TestDefaultPath(t *testing.T) {
	if filepath.Base(DefaultPath()) != "whisper_warmup_jfk.wav" {
		t.Errorf("unexpected default path %s", DefaultPath())
	}
}
