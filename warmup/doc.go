// Package warmup primes a transcription backend with one inference on a
// short sample so the first client request does not pay model start-up cost.
//
// The sample comes from an AssetProvider. The default provider reuses a
// cached copy of the JFK clip in the temp directory and downloads it once
// when missing. Every failure is reported as a warning and a false result;
// warmup never stops the service from starting.
package warmup
