package liftime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	clock := NewRealClock()

	before := time.Now()
	actual := clock.Now()
	after := time.Now()

	assert.True(t, actual.After(before) || actual.Equal(before))
	assert.True(t, actual.Before(after) || actual.Equal(after))
}

func TestMockClock_Now(t *testing.T) {
	startTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(startTime)

	assert.Equal(t, startTime, clock.Now())
}

func TestMockClock_Advance(t *testing.T) {
	startTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := NewMockClock(startTime)

	clock.Advance(1 * time.Hour)

	expected := startTime.Add(1 * time.Hour)
	assert.Equal(t, expected, clock.Now())
}

func TestClockInterface(t *testing.T) {
	var _ Clock = &RealClock{}
	var _ Clock = &MockClock{}
}

func TestMockClock_AccumulatesAcrossIntervals(t *testing.T) {
	startTime := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(startTime)

	recordedTimes := make([]time.Time, 0)
	for i := 0; i < 3; i++ {
		recordedTimes = append(recordedTimes, clock.Now())
		clock.Advance(1 * time.Hour)
	}

	assert.Len(t, recordedTimes, 3)
	assert.Equal(t, startTime, recordedTimes[0])
	assert.Equal(t, startTime.Add(1*time.Hour), recordedTimes[1])
	assert.Equal(t, startTime.Add(2*time.Hour), recordedTimes[2])
}
