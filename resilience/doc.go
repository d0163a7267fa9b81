// Package resilience guards inference backends and sidecar calls.
//
// A Bulkhead with one slot serializes inference on a backend that is not
// reentrant:
//
//	bh := resilience.NewBulkhead(resilience.BulkheadConfig{Name: "inference.faster-whisper", MaxWait: -1})
//	res, err := resilience.Call(ctx, bh, func() (*transcription.Result, error) {
//	    return backend.Transcribe(ctx, samples, prompt)
//	})
//
// Retry wraps sidecar and download calls in exponential backoff
// (github.com/cenkalti/backoff/v5).
package resilience
