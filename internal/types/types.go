package types

import "time"

// Recognition is one getGesture call served by the detector.
type Recognition struct {
	ID           string    `json:"id"`
	GestureIndex int       `json:"gestureIndex"`
	GestureProb  float64   `json:"gestureProb"`
	NumFrames    int       `json:"numFrames"`
	Height       int       `json:"height"`
	Width        int       `json:"width"`
	Depth        int       `json:"depth"`
	LatencyMs    int64     `json:"latencyMs"`
	CreatedAt    time.Time `json:"createdAt"`
}
