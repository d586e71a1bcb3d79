package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func testTracker(start time.Time) (*CooldownTracker, *time.Time) {
	now := start
	tracker := NewCooldownTracker()
	tracker.now = func() time.Time { return now }
	return tracker, &now
}

func TestCooldownNeverUsedIsReady(t *testing.T) {
	tracker, _ := testTracker(time.Now())

	assert.Zero(t, tracker.Remaining("slots", "somepony", 10*time.Second))
}

func TestCooldownZeroDurationAlwaysReady(t *testing.T) {
	tracker, _ := testTracker(time.Now())

	tracker.Commit("ping", "somepony", 0)
	assert.Zero(t, tracker.Remaining("ping", "somepony", 0))
}

func TestCooldownCountsDown(t *testing.T) {
	start := time.Now()
	tracker, now := testTracker(start)

	tracker.Commit("slots", "somepony", 10*time.Second)

	assert.Equal(t, 10, tracker.Remaining("slots", "somepony", 10*time.Second))

	*now = start.Add(4 * time.Second)
	assert.Equal(t, 6, tracker.Remaining("slots", "somepony", 10*time.Second))

	*now = start.Add(10 * time.Second)
	assert.Zero(t, tracker.Remaining("slots", "somepony", 10*time.Second))
}

func TestCooldownRoundsUp(t *testing.T) {
	start := time.Now()
	tracker, now := testTracker(start)

	tracker.Commit("slots", "somepony", 10*time.Second)

	*now = start.Add(9*time.Second + 100*time.Millisecond)
	assert.Equal(t, 1, tracker.Remaining("slots", "somepony", 10*time.Second), "partial seconds round up")
}

func TestCooldownIsPerUser(t *testing.T) {
	tracker, _ := testTracker(time.Now())

	tracker.Commit("slots", "somepony", 10*time.Second)

	assert.NotZero(t, tracker.Remaining("slots", "somepony", 10*time.Second))
	assert.Zero(t, tracker.Remaining("slots", "otherpony", 10*time.Second))
}

func TestCooldownIsPerCommand(t *testing.T) {
	tracker, _ := testTracker(time.Now())

	tracker.Commit("slots", "somepony", 10*time.Second)

	assert.Zero(t, tracker.Remaining("roll", "somepony", 10*time.Second))
}

func TestCooldownUsernameCaseInsensitive(t *testing.T) {
	tracker, _ := testTracker(time.Now())

	tracker.Commit("slots", "SomePony", 10*time.Second)

	assert.NotZero(t, tracker.Remaining("slots", "somepony", 10*time.Second))
}

func TestCooldownRecommitRestartsClock(t *testing.T) {
	start := time.Now()
	tracker, now := testTracker(start)

	tracker.Commit("slots", "somepony", 10*time.Second)

	*now = start.Add(10 * time.Second)
	tracker.Commit("slots", "somepony", 10*time.Second)

	assert.Equal(t, 10, tracker.Remaining("slots", "somepony", 10*time.Second))
}
