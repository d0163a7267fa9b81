package warmup

import (
	"context"
	"fmt"
	"time"

	"github.com/kbukum/whisperkit/audio"
	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/logger"
	"github.com/kbukum/whisperkit/transcription"
)

// Runner performs the warmup inference.
type Runner struct {
	assets AssetProvider
	log    *logger.Logger
}

// NewRunner creates a Runner. A nil assets uses Default(DefaultTimeout).
func NewRunner(assets AssetProvider, log *logger.Logger) *Runner {
	if assets == nil {
		assets = Default(DefaultTimeout)
	}
	if log == nil {
		log = logger.WithComponent("warmup")
	}
	return &Runner{assets: assets, log: log}
}

// Run is a shortcut for NewRunner(Default(timeout), nil).Run.
func Run(ctx context.Context, backend transcription.Backend, warmupFile *string, timeout time.Duration) bool {
	return NewRunner(Default(timeout), nil).Run(ctx, backend, warmupFile)
}

// Run warms backend up and reports whether an inference completed.
//
// A nil warmupFile asks the asset provider for the default sample. A pointer
// to "" disables warmup.
func (r *Runner) Run(ctx context.Context, backend transcription.Backend, warmupFile *string) bool {
	if warmupFile != nil && *warmupFile == "" {
		return false
	}

	var path string
	if warmupFile != nil {
		path = *warmupFile
	} else {
		fetched, err := r.assets.Fetch(ctx)
		if err != nil {
			if errors.HasCode(err, errors.ErrCodeNetworkTimeout) {
				r.log.Warn("Warmup file download timed out", logger.ErrorFields("warmup_fetch", err))
			} else {
				r.log.Warn("Warmup file download failed", logger.ErrorFields("warmup_fetch", err))
			}
			return false
		}
		path = fetched
	}

	if !nonEmptyFile(path) {
		r.log.Warn(fmt.Sprintf("Warmup file %s invalid or missing", path))
		return false
	}

	samples, err := audio.Load(path, audio.SampleRate)
	if err != nil {
		r.log.Warn("Warmup file could not be decoded", logger.ErrorFields("warmup_load", err))
		return false
	}

	if err := r.infer(ctx, backend, samples); err != nil {
		r.log.Warn("Warmup failed", logger.ErrorFields("warmup", err))
		return false
	}
	r.log.Info("Whisper is warmed up.", logger.Fields(logger.FieldBackend, string(backend.Kind()), logger.FieldPath, path))
	return true
}

func (r *Runner) infer(ctx context.Context, backend transcription.Backend, samples []float32) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.WarmupFailure(fmt.Sprintf("backend panicked: %v", p), nil)
		}
	}()
	if w, ok := transcription.AsWarmer(backend); ok {
		return w.Warmup(ctx, samples)
	}
	_, err = backend.Transcribe(ctx, samples, "")
	return err
}
