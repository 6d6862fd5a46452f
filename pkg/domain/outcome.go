package domain

// Outcome is the result of parsing one url, by a single strategy or by the orchestrator
type Outcome struct {
	Events             []Event   `json:"events"`
	Confidence         float64   `json:"confidence"`
	Strategy           Strategy  `json:"strategy"`
	SourceURL          string    `json:"source_url"`
	Error              string    `json:"error,omitempty"`
	ErrorKind          ErrorKind `json:"error_kind,omitempty"`
	FallbackUsed       bool      `json:"fallback_used,omitempty"`
	Endpoint           string    `json:"endpoint,omitempty"` // feed or api url actually used
	Note               string    `json:"note,omitempty"`
	AdaptiveConfidence float64   `json:"adaptive_confidence,omitempty"`
	Analysis           *Analysis `json:"analysis,omitempty"`
}

// Settle enforces the outcome invariant: confidence is zero exactly when there are no events.
// A non-empty outcome is clamped to (0,1].
func (o *Outcome) Settle() {
	if len(o.Events) == 0 {
		o.Events = []Event{}
		o.Confidence = 0
		o.AdaptiveConfidence = 0
		return
	}
	o.Confidence = Clamp(o.Confidence)
	if o.Confidence == 0 {
		o.Confidence = 0.01
	}
	o.AdaptiveConfidence = Clamp(o.AdaptiveConfidence)
}

// Success reports whether the outcome carries events
func (o *Outcome) Success() bool {
	return len(o.Events) > 0
}

// Failed makes a zero-confidence outcome with the error message and its kind
func Failed(s Strategy, url string, err error) Outcome {
	res := Outcome{Events: []Event{}, Strategy: s, SourceURL: url}
	if err != nil {
		res.Error = err.Error()
		res.ErrorKind = KindOf(err)
	}
	return res
}

// Clamp limits v to [0,1]
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
