package progress

import (
	"fmt"
	"testing"
	"time"

	"alcyxob/trainlog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func set(idx int, reps *int, weight *float64) domain.SetLog {
	return domain.SetLog{SetIndex: idx, Reps: reps, Weight: weight, Unit: domain.UnitLb}
}

func day(n int) time.Time {
	return time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestComputeDataPoint_Volume(t *testing.T) {
	entry := domain.ExerciseSessionLogs{
		SessionID: primitive.NewObjectID(),
		Date:      day(0),
		SetLogs: []domain.SetLog{
			set(0, intPtr(10), floatPtr(50)),
			set(1, intPtr(5), floatPtr(100)),
			set(2, intPtr(8), nil),
		},
	}

	point := ComputeDataPoint(entry)
	assert.Equal(t, 1000.0, point.Volume)
	assert.Equal(t, "2024-01-01", point.Date)
	require.NotNil(t, point.BestSet)
	assert.Equal(t, BestSet{Reps: 5, Weight: 100, Unit: domain.UnitLb}, *point.BestSet)
	assert.Nil(t, point.DurationSec)
	assert.Nil(t, point.RPE)
}

func TestComputeDataPoint_DurationAndRPE(t *testing.T) {
	a, b := set(0, nil, nil), set(1, nil, nil)
	a.DurationSec, b.DurationSec = intPtr(60), intPtr(90)
	a.RPE, b.RPE = intPtr(6), intPtr(8)
	c := set(2, nil, nil)

	point := ComputeDataPoint(domain.ExerciseSessionLogs{Date: day(0), SetLogs: []domain.SetLog{a, b, c}})
	require.NotNil(t, point.DurationSec)
	assert.Equal(t, 150, *point.DurationSec)
	require.NotNil(t, point.RPE)
	assert.Equal(t, 8, *point.RPE)
	assert.Nil(t, point.BestSet)
	assert.Zero(t, point.Volume)
}

func TestComputeDataPoint_ZeroDurationIsNull(t *testing.T) {
	a := set(0, nil, nil)
	a.DurationSec = intPtr(0)

	point := ComputeDataPoint(domain.ExerciseSessionLogs{Date: day(0), SetLogs: []domain.SetLog{a}})
	assert.Nil(t, point.DurationSec)
}

func TestFindBestSet_FirstWinsTies(t *testing.T) {
	best := FindBestSet([]domain.SetLog{
		set(0, intPtr(3), floatPtr(100)),
		set(1, intPtr(8), floatPtr(100)),
		set(2, intPtr(1), floatPtr(90)),
	})
	require.NotNil(t, best)
	assert.Equal(t, 3, best.Reps)
}

func TestLastBestSet(t *testing.T) {
	history := []domain.ExerciseSessionLogs{
		{Date: day(3), SetLogs: []domain.SetLog{set(0, intPtr(10), nil)}},
		{Date: day(2), SetLogs: []domain.SetLog{set(0, intPtr(8), floatPtr(80)), set(1, intPtr(6), floatPtr(90))}},
		{Date: day(1), SetLogs: []domain.SetLog{set(0, intPtr(1), floatPtr(200))}},
	}

	best := LastBestSet(history)
	require.NotNil(t, best)
	assert.Equal(t, BestSet{Reps: 6, Weight: 90, Unit: domain.UnitLb}, *best)

	assert.Nil(t, LastBestSet(history[:1]))
	assert.Nil(t, LastBestSet(nil))
}

func TestSummarize_Chronological(t *testing.T) {
	// Most recent first, as the repository returns it.
	var history []domain.ExerciseSessionLogs
	for i := 14; i >= 0; i-- {
		logs := []domain.SetLog{set(0, intPtr(5), floatPtr(float64(100+i)))}
		if i%5 == 0 {
			logs = []domain.SetLog{set(0, intPtr(5), nil)}
		}
		history = append(history, domain.ExerciseSessionLogs{SessionID: primitive.NewObjectID(), Date: day(i), SetLogs: logs})
	}

	summary := Summarize(history)
	require.Len(t, summary.DataPoints, 15)
	for i := 1; i < len(summary.DataPoints); i++ {
		assert.Less(t, summary.DataPoints[i-1].Date, summary.DataPoints[i].Date)
	}

	require.Len(t, summary.RecentPRs, RecentPRLimit)
	last := summary.RecentPRs[len(summary.RecentPRs)-1]
	assert.Equal(t, day(14).Format(domain.DateLayout), last.Date)
	for i, p := range summary.RecentPRs {
		require.NotNil(t, p.BestSet, fmt.Sprintf("point %d", i))
		if i > 0 {
			assert.Less(t, summary.RecentPRs[i-1].Date, p.Date)
		}
	}
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize(nil)
	assert.Empty(t, summary.DataPoints)
	assert.NotNil(t, summary.RecentPRs)
}
