package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(http.StatusOK, 10*time.Millisecond)
	c.Record(http.StatusConflict, 20*time.Millisecond)
	c.Record(http.StatusInternalServerError, 30*time.Millisecond)
	c.Transition("close")
	c.Transition("close")
	c.Conflict()
	c.BonusComputed(4, 1)

	snap := c.Snapshot()
	assert.Equal(t, uint64(3), snap["requestsTotal"])
	assert.Equal(t, uint64(1), snap["errorsTotal"])
	assert.Equal(t, uint64(2), snap["conflictsTotal"])
	assert.Equal(t, 20.0, snap["avgDurationMs"])
	assert.Equal(t, map[string]uint64{"close": 2}, snap["transitionsTotal"])
	assert.Equal(t, uint64(4), snap["bonusResultsTotal"])
	assert.Equal(t, uint64(1), snap["bonusFailuresTotal"])
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.Record(http.StatusOK, time.Millisecond)
	c.Transition("edit")
	c.Conflict()
	c.BonusComputed(1, 0)
	assert.Empty(t, c.Snapshot())
}
