package tokenizer

import (
	"time"

	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/logger"
)

// Kind identifies a sentence splitting strategy.
type Kind string

const (
	KindUkrainian Kind = "ukrainian"
	KindMoses     Kind = "moses"
	KindLearned   Kind = "learned"
)

// Tokenizer splits text into sentences. Implementations are safe for
// concurrent use.
type Tokenizer interface {
	Split(text string) []string
	Kind() Kind
}

// DefaultLearnedModel is the learned splitter model name.
const DefaultLearnedModel = "wtp-canine-s-12l-no-adapters"

// Options configures the learned splitter. Rule splitters ignore it.
type Options struct {
	SplitterURL string
	Model       string
	Timeout     time.Duration
	Logger      *logger.Logger
}

func (o *Options) applyDefaults() {
	if o.SplitterURL == "" {
		o.SplitterURL = "http://localhost:8389"
	}
	if o.Model == "" {
		o.Model = DefaultLearnedModel
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Logger == nil {
		o.Logger = logger.WithComponent("tokenizer")
	}
}

// Select returns the sentence splitter for lang, or nil when mode is not
// "sentence". It never downloads models or contacts the splitter sidecar.
func Select(lang, mode string, opts Options) (Tokenizer, error) {
	if mode != "sentence" {
		return nil, nil
	}
	if !IsWhisperLanguage(lang) {
		return nil, errors.UnsupportedLanguage(lang)
	}

	if lang == "uk" {
		return NewUkrainian(), nil
	}
	if MosesLanguages[lang] {
		return NewMoses(lang), nil
	}

	opts.applyDefaults()
	hint := lang
	if LearnedUnsupported[lang] {
		opts.Logger.Debug(lang+" code is not supported by the learned splitter, using no language hint",
			logger.Fields(logger.FieldLanguage, lang))
		hint = ""
	}
	return NewLearned(hint, opts)
}
