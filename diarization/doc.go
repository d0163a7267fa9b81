// Package diarization defines the speaker diarization contract used by the
// engine and a registry of runtime-selectable diarizers.
//
// # Providers
//
//   - diarization/pyannote: pyannote/diart sidecar
//
// # Usage
//
//	reg := diarization.NewRegistry()
//	pyannote.Register(reg)
//	d, err := reg.Create(ctx, pyannote.ProviderName, diarization.Options{
//		SegmentationModel: "pyannote/segmentation-3.0",
//		EmbeddingModel:    "pyannote/embedding",
//		BlockDuration:     0.5,
//	})
//	resp, err := d.Diarize(ctx, diarization.Request{Samples: pcm})
package diarization
