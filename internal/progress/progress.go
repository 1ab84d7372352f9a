// Package progress derives per-session metrics for one exercise from its set logs.
// Everything here is pure; the service layer supplies the history.
package progress

import (
	"alcyxob/trainlog/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecentPRLimit caps how many data points with a best set are reported as recent PRs.
const RecentPRLimit = 10

// BestSet is the heaviest set of a session among sets with both reps and weight.
type BestSet struct {
	Reps   int               `json:"reps"`
	Weight float64           `json:"weight"`
	Unit   domain.WeightUnit `json:"unit"`
}

// DataPoint summarizes one session.
type DataPoint struct {
	Date        string             `json:"date"`
	SessionID   primitive.ObjectID `json:"sessionId"`
	BestSet     *BestSet           `json:"bestSet"`
	Volume      float64            `json:"volume"`
	DurationSec *int               `json:"durationSec"`
	RPE         *int               `json:"rpe"`
}

// Summary is the chronological history of one exercise.
type Summary struct {
	DataPoints []DataPoint `json:"dataPoints"`
	RecentPRs  []DataPoint `json:"recentPRs"`
}

// FindBestSet returns the set with the greatest weight among sets with reps and
// weight. The first such set wins ties. Nil when no set qualifies.
func FindBestSet(logs []domain.SetLog) *BestSet {
	var best *BestSet
	for _, l := range logs {
		if l.Reps == nil || l.Weight == nil {
			continue
		}
		if best == nil || *l.Weight > best.Weight {
			best = &BestSet{Reps: *l.Reps, Weight: *l.Weight, Unit: l.Unit}
		}
	}
	return best
}

// ComputeDataPoint folds the logs of one session.
func ComputeDataPoint(entry domain.ExerciseSessionLogs) DataPoint {
	point := DataPoint{
		Date:      entry.Date.UTC().Format(domain.DateLayout),
		SessionID: entry.SessionID,
		BestSet:   FindBestSet(entry.SetLogs),
	}

	var duration int
	for _, l := range entry.SetLogs {
		if l.Reps != nil && l.Weight != nil {
			point.Volume += float64(*l.Reps) * *l.Weight
		}
		if l.DurationSec != nil {
			duration += *l.DurationSec
		}
		if l.RPE != nil {
			rpe := *l.RPE
			point.RPE = &rpe
		}
	}
	// A zero total is reported the same as no duration at all.
	if duration > 0 {
		point.DurationSec = &duration
	}
	return point
}

// Summarize turns history ordered most recent first into chronological data
// points plus the last RecentPRLimit points that have a best set.
func Summarize(history []domain.ExerciseSessionLogs) Summary {
	points := make([]DataPoint, len(history))
	for i, entry := range history {
		points[len(history)-1-i] = ComputeDataPoint(entry)
	}

	prs := []DataPoint{}
	for _, p := range points {
		if p.BestSet != nil {
			prs = append(prs, p)
		}
	}
	if len(prs) > RecentPRLimit {
		prs = prs[len(prs)-RecentPRLimit:]
	}

	return Summary{DataPoints: points, RecentPRs: prs}
}

// LastBestSet scans history most recent first and returns the best set of the
// first session that has one.
func LastBestSet(history []domain.ExerciseSessionLogs) *BestSet {
	for _, entry := range history {
		if best := FindBestSet(entry.SetLogs); best != nil {
			return best
		}
	}
	return nil
}
