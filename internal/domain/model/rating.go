package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Rating struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"`
	Feedback  *string   `json:"feedback,omitempty"`
	IPHash    string    `json:"-"`
	DayBucket string    `json:"-"` // YYYY-MM-DD in the rating timezone
	CreatedAt time.Time `json:"created_at"`
}

type RatingSummary struct {
	Count     int         `json:"count"`
	Average   float64     `json:"average"`
	Histogram map[int]int `json:"histogram"`
}
