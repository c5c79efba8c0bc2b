package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	backfill := &stubJob{name: "ledger-backfill"}
	sweep := &stubJob{name: "summary-sweep"}
	registry, err := NewRegistry(backfill, sweep)
	require.NoError(t, err)

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Same(t, backfill, jobs[0])
	assert.Same(t, sweep, jobs[1])
	assert.Equal(t, []string{"ledger-backfill", "summary-sweep"}, registry.Names())

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0])
}

func TestRegistryRejectsInvalidJobs(t *testing.T) {
	_, err := NewRegistry(&stubJob{name: "ledger-backfill"}, &stubJob{name: "ledger-backfill"})
	assert.ErrorContains(t, err, "already registered")

	_, err = NewRegistry(Job(nil))
	assert.ErrorContains(t, err, "job required")

	var registry Registry
	assert.ErrorContains(t, registry.Register(&stubJob{name: "  "}), "name required")
	require.NoError(t, registry.Register(&stubJob{name: "ledger-backfill"}))
	assert.Equal(t, []string{"ledger-backfill"}, registry.Names())
}
