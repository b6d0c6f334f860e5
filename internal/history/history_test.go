package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advenimus/jwtools/internal/attendance"
	"github.com/advenimus/jwtools/internal/launcher"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), DBFileName))
	require.NoError(t, err)
	require.NoError(t, db.Migrate())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Migrate())

	version, err := db.GetMeta("schema_version")
	require.NoError(t, err)
	assert.Equal(t, "1", version)
}

func TestRecordAndRecentAttendance(t *testing.T) {
	db := openTestDB(t)

	base := time.Date(2024, time.March, 10, 10, 30, 0, 0, time.UTC)
	counts := attendance.Counts{Options: [attendance.NumPollOptions]int{4, 8}, Phone: 2}
	require.NoError(t, db.RecordAttendance(counts, counts.Total(), base))
	require.NoError(t, db.RecordAttendance(attendance.Counts{Phone: 5}, 5, base.Add(7*24*time.Hour)))

	records, err := db.RecentAttendance(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Newest first.
	assert.Equal(t, 5, records[0].Total)
	assert.Equal(t, counts.Total(), records[1].Total)
	assert.Equal(t, counts, records[1].Counts)
	assert.Equal(t, base.Unix(), records[1].RecordedAt.Unix())
}

func TestRecentAttendanceLimit(t *testing.T) {
	db := openTestDB(t)

	at := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, db.RecordAttendance(attendance.Counts{Phone: i}, i, at.Add(time.Duration(i)*time.Minute)))
	}

	records, err := db.RecentAttendance(3)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, 4, records[0].Total)
}

func TestRecordAndRecentLaunches(t *testing.T) {
	db := openTestDB(t)

	at := time.Now()
	ok := &launcher.RunResult{
		State: launcher.StateCompleted,
		Steps: []launcher.StepResult{{StepName: "Zoom", Succeeded: true}},
	}
	failed := &launcher.RunResult{
		State:      launcher.StateCompletedWithErrors,
		Steps:      []launcher.StepResult{{StepName: "OBS Studio", Succeeded: false}},
		FailedStep: "OBS Studio",
	}
	require.NoError(t, db.RecordLaunch(ok, at))
	require.NoError(t, db.RecordLaunch(failed, at.Add(time.Minute)))

	records, err := db.RecentLaunches(10)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, launcher.StateCompletedWithErrors, records[0].State)
	assert.Equal(t, "OBS Studio", records[0].FailedStep)
	assert.Equal(t, launcher.StateCompleted, records[1].State)
	assert.Empty(t, records[1].FailedStep)
	assert.Equal(t, 1, records[1].StepsRun)
}

func TestMeta(t *testing.T) {
	db := openTestDB(t)

	val, err := db.GetMeta("missing")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, db.SetMeta("last_check", "12345"))
	val, err = db.GetMeta("last_check")
	require.NoError(t, err)
	assert.Equal(t, "12345", val)
}
