package session

import (
	"math"

	"github.com/kbukum/whisperkit/audio"
)

const (
	defaultVADThreshold  = 0.01
	defaultVADMinSilence = 0.5
)

type vadEvent int

const (
	vadNone vadEvent = iota
	vadSpeechStart
	vadSpeechContinue
	vadSpeechEnd
)

// vad is an energy based voice activity detector. Durations are counted in
// samples so results do not depend on wall-clock timing.
type vad struct {
	threshold  float32
	minSilence int

	inSpeech bool
	silence  int
}

func newVAD(threshold float32, minSilenceSeconds float64) *vad {
	return &vad{threshold: threshold, minSilence: int(minSilenceSeconds * audio.SampleRate)}
}

// process classifies one frame.
func (v *vad) process(frame []float32) vadEvent {
	speech := rms(frame) > v.threshold
	if speech {
		v.silence = 0
		if !v.inSpeech {
			v.inSpeech = true
			return vadSpeechStart
		}
		return vadSpeechContinue
	}
	if !v.inSpeech {
		return vadNone
	}
	v.silence += len(frame)
	if v.silence >= v.minSilence {
		v.inSpeech = false
		v.silence = 0
		return vadSpeechEnd
	}
	return vadSpeechContinue
}

func rms(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(samples))))
}
