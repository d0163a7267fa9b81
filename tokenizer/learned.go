package tokenizer

import (
	"context"
	"time"

	"github.com/kbukum/whisperkit/httpclient"
	"github.com/kbukum/whisperkit/logger"
)

// LearnedSplitter calls the learned sentence-segmentation sidecar.
// The model is loaded lazily by the sidecar on first use.
type LearnedSplitter struct {
	client   *httpclient.Client
	model    string
	hint     string
	timeout  time.Duration
	fallback *RuleSplitter
	log      *logger.Logger
}

type splitRequest struct {
	Text     string  `json:"text"`
	LangCode *string `json:"lang_code"`
	Model    string  `json:"model"`
}

type splitResponse struct {
	Sentences []string `json:"sentences"`
}

// NewLearned builds a learned splitter. An empty hint means no language hint.
func NewLearned(hint string, opts Options) (*LearnedSplitter, error) {
	opts.applyDefaults()
	client, err := httpclient.New(httpclient.Config{
		Name:    "sentence-splitter",
		BaseURL: opts.SplitterURL,
		Timeout: opts.Timeout,
		Retry:   httpclient.DefaultRetryConfig(),
	})
	if err != nil {
		return nil, err
	}
	return &LearnedSplitter{
		client:   client,
		model:    opts.Model,
		hint:     hint,
		timeout:  opts.Timeout,
		fallback: &RuleSplitter{kind: KindLearned, lang: hint},
		log:      opts.Logger,
	}, nil
}

func (l *LearnedSplitter) Kind() Kind { return KindLearned }

// Hint returns the language hint, false when the splitter runs without one.
func (l *LearnedSplitter) Hint() (string, bool) {
	return l.hint, l.hint != ""
}

// Model returns the learned model name.
func (l *LearnedSplitter) Model() string { return l.model }

// Split asks the sidecar to segment text. When the sidecar fails, the text
// is split on punctuation instead and a warning is logged.
func (l *LearnedSplitter) Split(text string) []string {
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()
	sentences, err := l.SplitContext(ctx, text)
	if err != nil {
		l.log.Warn("learned splitter unavailable, falling back to punctuation rules",
			logger.ErrorFields("split", err))
		return l.fallback.Split(text)
	}
	return sentences
}

// SplitContext is Split with caller-controlled cancellation and no fallback.
func (l *LearnedSplitter) SplitContext(ctx context.Context, text string) ([]string, error) {
	req := splitRequest{Text: text, Model: l.model}
	if l.hint != "" {
		hint := l.hint
		req.LangCode = &hint
	}
	var resp splitResponse
	if err := l.client.PostJSON(ctx, "/split", req, &resp); err != nil {
		return nil, httpclient.ToAppError("sentence splitter", err)
	}
	return resp.Sentences, nil
}
