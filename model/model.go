package model

// Progress is what a landing page shows for its waitlist: the fill
// percentage of the bar and the literal count.
type Progress struct {
	Page    string  `json:"page"`
	Count   int     `json:"count"`
	Target  int     `json:"target"`
	Percent float64 `json:"percent"`
}

type ValidationState string

const (
	ValidationNeutral ValidationState = "neutral"
	ValidationValid   ValidationState = "valid"
	ValidationInvalid ValidationState = "invalid"
)
