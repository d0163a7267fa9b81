package transcription

import "strings"

// Result is the output of one inference call.
type Result struct {
	Text     string    `json:"text"`
	Language string    `json:"language,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

// Segment is a time-aligned portion of a transcript. Times are seconds
// relative to the start of the submitted audio.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
	// NoSpeechProb is the model's probability that the segment is silence.
	NoSpeechProb float64 `json:"no_speech_prob,omitempty"`
}

// Word is a single timestamped token.
type Word struct {
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Text        string  `json:"text"`
	Probability float64 `json:"probability,omitempty"`
}

// Shift returns w moved by offset seconds.
func (w Word) Shift(offset float64) Word {
	w.Start += offset
	w.End += offset
	return w
}

// Words flattens the result into words. Segments without word timing
// contribute one word spanning the segment.
func (r *Result) Words() []Word {
	if r == nil {
		return nil
	}
	var words []Word
	for _, seg := range r.Segments {
		if len(seg.Words) > 0 {
			words = append(words, seg.Words...)
			continue
		}
		if text := strings.TrimSpace(seg.Text); text != "" {
			words = append(words, Word{Start: seg.Start, End: seg.End, Text: seg.Text, Probability: 1 - seg.NoSpeechProb})
		}
	}
	return words
}

// SegmentEnds returns each segment's end time.
func (r *Result) SegmentEnds() []float64 {
	if r == nil {
		return nil
	}
	ends := make([]float64, len(r.Segments))
	for i, seg := range r.Segments {
		ends[i] = seg.End
	}
	return ends
}
