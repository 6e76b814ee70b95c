package jobs_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/sitecrawler/internal/jobs"
)

func TestAcquire_SecondAcquireForSameNameFails(t *testing.T) {
	dir := t.TempDir()

	lock, err := jobs.Acquire(dir, "acme-docs")
	require.Nil(t, err)
	defer lock.Release()

	_, err2 := jobs.Acquire(dir, "acme-docs")
	require.Error(t, err2)
}

func TestAcquire_ReleaseFreesTheName(t *testing.T) {
	dir := t.TempDir()

	lock, err := jobs.Acquire(dir, "acme-docs")
	require.Nil(t, err)
	require.NoError(t, lock.Release())

	lock2, err2 := jobs.Acquire(dir, "acme-docs")
	require.Nil(t, err2)
	require.NoError(t, lock2.Release())
}

func TestRegistry_TracksStatusByName(t *testing.T) {
	reg := jobs.NewRegistry()

	_, found := reg.Status("acme-docs")
	require.False(t, found)

	reg.SetStatus("acme-docs", jobs.StatusRunning)
	status, found := reg.Status("acme-docs")
	require.True(t, found)
	require.Equal(t, jobs.StatusRunning, status)
}
