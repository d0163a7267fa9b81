// Package pyannote attributes speech to speakers through the pyannote
// (diart) sidecar.
package pyannote

import (
	"cmp"
	"context"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/kbukum/whisperkit/audio"
	"github.com/kbukum/whisperkit/diarization"
	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/httpclient"
	"github.com/kbukum/whisperkit/logger"
)

// ProviderName is the key the provider registers under.
const ProviderName = "pyannote"

// Defaults for an unset Config.
const (
	DefaultURL           = "http://localhost:8388"
	DefaultTimeout       = 5 * time.Minute
	DefaultBlockDuration = 0.5
)

type Config struct {
	BaseURL           string        `json:"base_url"`
	SegmentationModel string        `json:"segmentation_model"`
	EmbeddingModel    string        `json:"embedding_model"`
	BlockDuration     float64       `json:"block_duration"` // seconds per pipeline step
	Timeout           time.Duration `json:"timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.BlockDuration <= 0 {
		c.BlockDuration = DefaultBlockDuration
	}
}

// Provider is a diarization.Provider talking to one sidecar.
type Provider struct {
	cfg    Config
	client *httpclient.Client
	log    *logger.Logger
}

// NewProvider does no I/O. The sidecar loads the named models on the first
// request.
func NewProvider(cfg Config, log *logger.Logger) (*Provider, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.WithComponent(ProviderName)
	}
	client, err := httpclient.New(httpclient.Config{
		Name:    ProviderName,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Retry:   httpclient.DefaultRetryConfig(),
		Logger:  log,
	})
	if err != nil {
		return nil, err
	}
	return &Provider{cfg: cfg, client: client, log: log}, nil
}

// Register makes the provider available under ProviderName.
func Register(reg *diarization.Registry) {
	reg.RegisterFactory(ProviderName, func(_ context.Context, o diarization.Options) (diarization.Provider, error) {
		return NewProvider(Config{
			BaseURL:           o.URL,
			SegmentationModel: o.SegmentationModel,
			EmbeddingModel:    o.EmbeddingModel,
			BlockDuration:     o.BlockDuration,
			Timeout:           o.Timeout,
		}, o.Logger)
	})
}

func (p *Provider) Name() string   { return ProviderName }
func (p *Provider) Config() Config { return p.cfg }

// IsAvailable pings the sidecar's health route once.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.client.Ping(ctx, "/health")
}

// form lists the multipart fields sent next to the audio. Speaker count
// hints are only sent when set.
func (p *Provider) form(req diarization.Request) map[string]string {
	f := map[string]string{
		"segmentation_model": p.cfg.SegmentationModel,
		"embedding_model":    p.cfg.EmbeddingModel,
		"block_duration":     strconv.FormatFloat(p.cfg.BlockDuration, 'f', -1, 64),
	}
	for key, n := range map[string]int{
		"num_speakers": req.NumSpeakers,
		"min_speakers": req.MinSpeakers,
		"max_speakers": req.MaxSpeakers,
	} {
		if n > 0 {
			f[key] = strconv.Itoa(n)
		}
	}
	return f
}

// Diarize uploads req.Samples as 16 kHz WAV. Returned segments are shifted
// by req.Offset and sorted by start time.
func (p *Provider) Diarize(ctx context.Context, req diarization.Request) (*diarization.Response, error) {
	wav, err := audio.EncodeWAV(req.Samples, audio.SampleRate)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		Path:   "/diarize",
		Body:   httpclient.WAVUpload(p.form(req), wav),
	})
	if err != nil {
		return nil, httpclient.ToAppError("pyannote diarization", err)
	}

	var out wireResponse
	if err := resp.DecodeJSON(&out); err != nil {
		return nil, errors.ExternalServiceError("pyannote diarization", err)
	}
	if out.Error != "" {
		return nil, errors.New(errors.ErrCodeExternalService, "pyannote diarization: %s", out.Error).
			WithDetail("service", "pyannote diarization")
	}
	p.log.Debug("diarized", logger.Fields("segments", len(out.Segments), "speakers", out.NumSpeakers))
	return out.toResponse(req.Offset), nil
}

type wireResponse struct {
	Segments    []wireSegment `json:"segments"`
	NumSpeakers int           `json:"num_speakers"`
	Error       string        `json:"error,omitempty"`
}

type wireSegment struct {
	SpeakerID string  `json:"speaker_id"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
}

func (w wireResponse) toResponse(offset float64) *diarization.Response {
	segs := make([]diarization.Segment, 0, len(w.Segments))
	for _, s := range w.Segments {
		segs = append(segs, diarization.Segment{Speaker: s.SpeakerID, Start: s.StartTime + offset, End: s.EndTime + offset})
	}
	slices.SortStableFunc(segs, func(a, b diarization.Segment) int { return cmp.Compare(a.Start, b.Start) })
	return &diarization.Response{Segments: segs, NumSpeakers: w.NumSpeakers}
}
