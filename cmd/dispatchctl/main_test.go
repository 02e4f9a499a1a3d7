package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSeed = `
stations:
  - id: alpha
    name: Alpha
    callSign: ALPHA-1
  - id: bravo
    name: Bravo
    callSign: BRAVO-2
    commission: out_of_commission
  - id: charlie
    name: Charlie
    callSign: CHARLIE-3
    departments:
      - id: charlie-rescue
        name: Rescue
        units:
          - id: rescue-1
            name: Rescue 1
          - id: rescue-2
            name: Rescue 2
      - id: charlie-admin
        name: Administration
alerts:
  - id: a1
    type: fire
    name: Kitchen fire
    priority: high
    station: alpha
    status: active
    reportedAt: 2024-03-01T12:00:00Z
  - id: a2
    type: fire
    name: Warehouse fire
    priority: critical
    station: alpha
    status: on_scene
    reportedAt: 2024-03-01T09:00:00Z
incidents:
  - id: i1
    alert: a1
    station: alpha
    status: active
    createdAt: 2024-03-01T12:00:00Z
  - id: i2
    alert: a2
    station: alpha
    status: on_scene
    createdAt: 2024-03-01T09:30:00Z
`

func writeSeed(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testSeed), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(append([]string{"--seed", writeSeed(t)}, args...))
	err := cmd.Execute()
	return buf.String(), err
}

func TestUrgent(t *testing.T) {
	now = func() time.Time { return time.Date(2024, 3, 1, 13, 15, 0, 0, time.UTC) }
	t.Cleanup(func() { now = time.Now })

	out, err := run(t, "urgent")
	require.NoError(t, err)
	assert.Contains(t, out, "INCIDENT")
	assert.Contains(t, out, "─", "tables use box-drawing characters")
	require.Contains(t, out, "│ i2 ")
	require.Contains(t, out, "│ i1 ")
	assert.Less(t, strings.Index(out, "│ i2 "), strings.Index(out, "│ i1 "))
	assert.Contains(t, out, "3 hours 45 minutes")
	assert.Contains(t, out, "1 hour 15 minutes")

	out, err = run(t, "--markdown", "urgent")
	require.NoError(t, err)
	assert.Contains(t, out, "| i2 ")
	assert.NotContains(t, out, "│")

	out, err = run(t, "urgent", "--station", "charlie")
	require.NoError(t, err)
	assert.Equal(t, "No ongoing incidents\n", out)

	_, err = run(t, "urgent", "--station", "zulu")
	assert.Error(t, err)
}

func TestEligibility(t *testing.T) {
	out, err := run(t, "eligibility", "alpha")
	require.NoError(t, err)
	assert.Contains(t, out, "Eligible:         false")
	assert.Contains(t, out, "Reason:           Station has 1 active alert(s).")
	assert.Contains(t, out, "Active incidents: 1")

	out, err = run(t, "eligibility", "charlie")
	require.NoError(t, err)
	assert.Contains(t, out, "Eligible:         true")
	assert.NotContains(t, out, "Reason:")

	_, err = run(t, "eligibility")
	assert.Error(t, err)
}

func TestOptions(t *testing.T) {
	out, err := run(t, "options", "alpha")
	require.NoError(t, err)
	require.Contains(t, out, "│ bravo ")
	require.Contains(t, out, "│ charlie ")
	assert.Less(t, strings.Index(out, "│ bravo "), strings.Index(out, "│ charlie "))
	assert.Contains(t, out, "Station is out of commission.")
	assert.NotContains(t, out, "│ alpha ")
}

func TestValidate(t *testing.T) {
	out, err := run(t, "validate", "--station", "charlie", "--department", "charlie-rescue", "--unit", "rescue-2")
	require.NoError(t, err)
	assert.Equal(t, "Assignment is valid\n", out)

	out, err = run(t, "validate", "--station", "charlie", "--department", "charlie-admin")
	require.NoError(t, err)
	assert.Equal(t, "Assignment is valid\n", out)

	out, err = run(t, "validate", "--station", "charlie", "--department", "charlie-rescue")
	assert.ErrorIs(t, err, errInvalidAssignment)
	assert.Contains(t, out, "unitId: A unit must be selected")
	assert.Contains(t, out, "  rescue-1 (Rescue 1)")
	assert.Contains(t, out, "  rescue-2 (Rescue 2)")

	out, err = run(t, "validate", "--station", "alpha", "--department", "charlie-rescue", "--unit", "rescue-1")
	assert.ErrorIs(t, err, errInvalidAssignment)
	assert.Contains(t, out, "departmentId: The department does not belong to the station")

	_, err = run(t, "validate", "--station", "charlie")
	assert.Error(t, err)
}
