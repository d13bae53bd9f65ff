package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCounters(t *testing.T) {
	m := New()
	m.Mutation("folder.create")
	m.Mutation("folder.create")
	m.RemoteWrite(nil)
	m.RemoteWrite(errors.New("down"))
	m.PersistenceError("sqlite")
	m.TrashPurged(3)
	m.TrashPurged(0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.mutations.WithLabelValues("folder.create")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.remoteWrites.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistenceErrors.WithLabelValues("sqlite")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.trashPurged))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Mutation("x")
		m.RemoteWrite(nil)
		m.PersistenceError("x")
		m.TrashPurged(1)
	})
}
