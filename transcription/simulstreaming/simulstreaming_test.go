package simulstreaming

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/provider"
	"github.com/kbukum/whisperkit/transcription"
)

type fakeSidecar struct {
	mu         sync.Mutex
	lastLoad   loadRequest
	lastStream streamRequest
	paths      []string
}

func (f *fakeSidecar) record(path string) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
}

func (f *fakeSidecar) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

func (f *fakeSidecar) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/load", func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path)
		var req loadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode load: %v", err)
		}
		f.mu.Lock()
		f.lastLoad = req
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/warmup", func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path)
		if _, _, err := r.FormFile("audio"); err != nil {
			t.Errorf("missing audio part: %v", err)
		}
		_, _ = w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/streams", func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path)
		var req streamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode stream: %v", err)
		}
		f.mu.Lock()
		f.lastStream = req
		f.mu.Unlock()
		_, _ = w.Write([]byte(`{"id":"s1"}`))
	})
	mux.HandleFunc("/streams/s1/audio", func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path)
		_, _ = w.Write([]byte(`{"words":[{"word":" Hello","start":0,"end":0.4,"probability":0.9}]}`))
	})
	mux.HandleFunc("/streams/s1/close", func(w http.ResponseWriter, r *http.Request) {
		f.record(r.URL.Path)
		_, _ = w.Write([]byte(`{"words":[{"word":" world","start":0.4,"end":0.9,"probability":0.8}]}`))
	})
	return mux
}

func newBackend(t *testing.T, f *fakeSidecar) *Backend {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	prompt := "Meeting notes."
	b, err := New(context.Background(), Config{
		URL:      srv.URL,
		Model:    "large-v3",
		Language: "en",
		Tuning: transcription.SimulOptions{
			FrameThreshold: 25,
			Beams:          1,
			AudioMaxLen:    30,
			SegmentLength:  0.5,
			InitPrompt:     &prompt,
			ModelPath:      "./base.pt",
		},
	}, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return b
}

func TestNew_SendsTuning(t *testing.T) {
	f := &fakeSidecar{}
	newBackend(t, f)

	f.mu.Lock()
	req := f.lastLoad
	f.mu.Unlock()
	if req.Model != "large-v3" || req.Task != "transcribe" {
		t.Errorf("unexpected load request %+v", req)
	}
	if req.FrameThreshold != 25 || req.SegmentLength != 0.5 || req.ModelPath != "./base.pt" {
		t.Errorf("tuning not forwarded: %+v", req.SimulOptions)
	}
	if req.InitPrompt == nil || *req.InitPrompt != "Meeting notes." {
		t.Errorf("expected init prompt, got %v", req.InitPrompt)
	}
}

func TestWarmupAndStream(t *testing.T) {
	f := &fakeSidecar{}
	b := newBackend(t, f)
	ctx := context.Background()

	serial := transcription.Serialize(b, 0)
	w, ok := transcription.AsWarmer(serial)
	if !ok {
		t.Fatal("expected serialized backend to expose Warmup")
	}
	if err := w.Warmup(ctx, make([]float32, 1600)); err != nil {
		t.Fatalf("Warmup: %v", err)
	}

	st, ok := transcription.AsStreamer(serial)
	if !ok {
		t.Fatal("expected serialized backend to expose NewStream")
	}
	s, err := st.NewStream(ctx, transcription.StreamOptions{
		BufferTrimming:       "sentence",
		BufferTrimmingSec:    12,
		ConfidenceValidation: true,
	})
	if err != nil {
		t.Fatalf("NewStream: %v", err)
	}
	words, err := s.Push(ctx, make([]float32, 8000))
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if len(words) != 1 || words[0].Text != " Hello" {
		t.Errorf("unexpected words %+v", words)
	}
	tail, err := s.Close(ctx)
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if len(tail) != 1 || tail[0].Text != " world" {
		t.Errorf("unexpected tail %+v", tail)
	}

	want := "/load,/warmup,/streams,/streams/s1/audio,/streams/s1/close"
	if got := strings.Join(f.calls(), ","); got != want {
		t.Errorf("expected calls %s, got %s", want, got)
	}

	f.mu.Lock()
	req := f.lastStream
	f.mu.Unlock()
	if req.BufferTrimming != "sentence" || req.BufferTrimmingSec != 12 || !req.ConfidenceValidation {
		t.Errorf("commit settings not forwarded: %+v", req)
	}
}

func TestRegister(t *testing.T) {
	reg := transcription.NewRegistry()
	Register(reg)

	_, err := reg.Create(context.Background(), string(transcription.KindSimulStreaming), transcription.Options{
		BaseURL: "http://127.0.0.1:1",
		Timeout: 50 * time.Millisecond,
		Logger:  logger.Nop(),
	})
	if err == nil {
		t.Fatal("expected error: no sidecar is listening")
	}
	if Available {
		if !errors.HasCode(err, errors.ErrCodeExternalService) && !errors.HasCode(err, errors.ErrCodeNetworkTimeout) {
			t.Errorf("expected sidecar error, got %v", err)
		}
		return
	}
	var unavailable *provider.UnavailableError
	if !stderrors.As(err, &unavailable) {
		t.Fatalf("expected UnavailableError, got %T: %v", err, err)
	}
	if unavailable.Remediation != Remediation {
		t.Errorf("unexpected remediation %q", unavailable.Remediation)
	}
}
