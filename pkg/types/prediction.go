package types

// Prediction is one (label, probability) pair produced by the on-device
// visual classifier, probabilities in [0,1].
type Prediction struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// Predictions is the ranked list, highest confidence first, kept as
// classification evidence on matched items.
type Predictions []Prediction

// Top returns the highest-ranked prediction and whether one exists.
func (p Predictions) Top() (Prediction, bool) {
	if len(p) == 0 {
		return Prediction{}, false
	}
	return p[0], true
}
