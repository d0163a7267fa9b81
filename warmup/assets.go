package warmup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kbukum/whisperkit/errors"
	"github.com/kbukum/whisperkit/httpclient"
)

const (
	// JFKURL is the public warmup sample.
	JFKURL = "https://github.com/ggerganov/whisper.cpp/raw/master/samples/jfk.wav"
	// DefaultTimeout bounds the sample download.
	DefaultTimeout = 5 * time.Second

	cacheFileName = "whisper_warmup_jfk.wav"
)

// DefaultPath is where the downloaded sample is cached.
func DefaultPath() string {
	return filepath.Join(os.TempDir(), cacheFileName)
}

// AssetProvider returns the path of a local warmup sample.
type AssetProvider interface {
	Fetch(ctx context.Context) (string, error)
}

// AssetFunc adapts a function to AssetProvider.
type AssetFunc func(ctx context.Context) (string, error)

func (f AssetFunc) Fetch(ctx context.Context) (string, error) { return f(ctx) }

// Default returns the cache-then-download provider for the JFK sample.
func Default(timeout time.Duration) AssetProvider {
	path := DefaultPath()
	return Chain(LocalCache(path), RemoteFetch(JFKURL, path, timeout))
}

// LocalCache returns path when it holds a non-empty file.
func LocalCache(path string) AssetProvider {
	return AssetFunc(func(context.Context) (string, error) {
		if !nonEmptyFile(path) {
			return "", fmt.Errorf("warmup sample not cached at %s", path)
		}
		return path, nil
	})
}

// RemoteFetch downloads url to path. The download is bounded by timeout and
// written to a temporary file that is renamed into place on success.
func RemoteFetch(url, path string, timeout time.Duration) AssetProvider {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return AssetFunc(func(ctx context.Context) (string, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		client, err := httpclient.New(httpclient.Config{Name: "warmup-sample", Timeout: timeout})
		if err != nil {
			return "", err
		}
		resp, err := client.Do(ctx, httpclient.Request{Method: "GET", Path: url})
		if err != nil {
			return "", httpclient.ToAppError("warmup sample download", err)
		}
		if len(resp.Body) == 0 {
			return "", errors.WarmupFailure("downloaded warmup sample is empty", nil)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", fmt.Errorf("create warmup dir: %w", err)
		}
		tmp := path + ".tmp"
		if err := os.WriteFile(tmp, resp.Body, 0o644); err != nil {
			_ = os.Remove(tmp)
			return "", fmt.Errorf("write warmup sample: %w", err)
		}
		if err := os.Rename(tmp, path); err != nil {
			_ = os.Remove(tmp)
			return "", fmt.Errorf("move warmup sample: %w", err)
		}
		return path, nil
	})
}

// Chain tries providers in order and returns the first success. When all
// fail, the last error is returned.
func Chain(providers ...AssetProvider) AssetProvider {
	return AssetFunc(func(ctx context.Context) (string, error) {
		err := fmt.Errorf("no warmup asset providers")
		for _, p := range providers {
			var path string
			if path, err = p.Fetch(ctx); err == nil {
				return path, nil
			}
		}
		return "", err
	})
}

func nonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}
