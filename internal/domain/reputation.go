package domain

import "math"

// Histogram counts reviews per star bucket. Index 0 is the one-star bucket.
// A rating below 2 lands in bucket one, [2,3) in two, [3,4) in three,
// [4,5) in four, and 5 in five.
type Histogram [5]int64

// Bucket returns the 1-based star bucket for a rating.
func Bucket(rating float64) int {
	switch {
	case rating < 2:
		return 1
	case rating < 3:
		return 2
	case rating < 4:
		return 3
	case rating < 5:
		return 4
	default:
		return 5
	}
}

// Add counts a rating into its bucket.
func (h *Histogram) Add(rating float64) {
	h[Bucket(rating)-1]++
}

// Total is the number of reviews counted.
func (h Histogram) Total() int64 {
	var n int64
	for _, c := range h {
		n += c
	}
	return n
}

// Snapshot is the aggregate reputation of a single user.
type Snapshot struct {
	RevieweeID      string    `json:"reviewee_id"`
	Count           int64     `json:"count"`
	Average         *float64  `json:"average"`
	ConfidenceScore float64   `json:"confidence_score"`
	Stars           Histogram `json:"-"`
}

// NewSnapshot builds the aggregate for a reviewee from its histogram and
// rating sum. Average is nil when there are no reviews.
func NewSnapshot(revieweeID string, stars Histogram, ratingSum float64) Snapshot {
	s := Snapshot{
		RevieweeID: revieweeID,
		Count:      stars.Total(),
		Stars:      stars,
	}
	if s.Count == 0 {
		return s
	}
	avg := Round1(ratingSum / float64(s.Count))
	s.Average = &avg
	s.ConfidenceScore = Round1(ConfidenceScore(stars))
	return s
}

// confidencePrior is the pseudo-count added across buckets, one per star
// level, which pulls sparse histograms toward the middle of the scale.
const confidencePrior = 5

// ConfidenceScore computes a lower confidence bound on the mean star level
// using an additive-smoothed histogram: with one pseudo-observation per
// bucket, it takes the smoothed mean minus 1.65 standard errors.
func ConfidenceScore(stars Histogram) float64 {
	n := float64(stars.Total())

	weighted := func(f func(w float64) float64) float64 {
		var sum float64
		for i, count := range stars {
			w := float64(i + 1)
			sum += f(w) * float64(count+1)
		}
		return sum / (n + confidencePrior)
	}

	mean := weighted(func(w float64) float64 { return w })
	meanSq := weighted(func(w float64) float64 { return w * w })

	variance := (meanSq - mean*mean) / (n + confidencePrior + 1)
	return mean - 1.65*math.Sqrt(variance)
}
