// Package audio converts between WAV files and the mono float32 sample
// slices that backends consume.
//
// Samples are normalized to [-1, 1]. Load downmixes multi-channel input and
// resamples to the requested rate, so callers can always ask for 16 kHz mono.
package audio
