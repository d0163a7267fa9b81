package diarization

// Request holds parameters for a diarization call.
type Request struct {
	// Samples is 16 kHz mono PCM in [-1, 1].
	Samples []float32
	// Offset is added to every returned timestamp, in seconds.
	Offset float64
	// NumSpeakers is the exact number of speakers (0 = auto-detect).
	NumSpeakers int
	// MinSpeakers is the minimum expected number of speakers.
	MinSpeakers int
	// MaxSpeakers is the maximum expected number of speakers.
	MaxSpeakers int
}

// Response holds the result of a diarization call.
type Response struct {
	// Segments contains speaker-attributed time segments ordered by start.
	Segments []Segment `json:"segments"`
	// NumSpeakers is the number of speakers detected.
	NumSpeakers int `json:"num_speakers"`
}

// Segment represents a speaker-attributed time range.
type Segment struct {
	Speaker string  `json:"speaker"`
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
}

// SpeakerAt returns the speaker whose segment contains t, or "" if none does.
func (r *Response) SpeakerAt(t float64) string {
	for _, s := range r.Segments {
		if t >= s.Start && t < s.End {
			return s.Speaker
		}
	}
	return ""
}
