package compliance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/tax"
)

// fakeSource serves snapshots and records how often it was asked.
type fakeSource struct {
	snapshots []*Records
	loads     int
	err       error
}

func (f *fakeSource) LoadComplianceData(_ context.Context, year int) (*Records, error) {
	if f.err != nil {
		return nil, f.err
	}
	i := f.loads
	if i >= len(f.snapshots) {
		i = len(f.snapshots) - 1
	}
	f.loads++
	return f.snapshots[i], nil
}

func emptyTablesRecords() *Records {
	r := healthyRecords()
	r.Pension = nil
	r.Withholding = nil
	r.DependentConfig = nil
	return r
}

func TestEngineCheckWithoutRemediation(t *testing.T) {
	source := &fakeSource{snapshots: []*Records{healthyRecords()}}
	engine := NewEngine(source, nil)

	report, err := engine.Check(context.Background(), 2026, false)
	require.NoError(t, err)
	assert.True(t, report.OK)
	assert.False(t, report.Remediated)
	assert.Equal(t, 1, source.loads)
}

func TestEngineRemediatesMissingTables(t *testing.T) {
	// GIVEN a first snapshot without tables and a second, fixed one
	source := &fakeSource{snapshots: []*Records{emptyTablesRecords(), healthyRecords()}}

	remediated := 0
	engine := NewEngine(source, func(_ context.Context, year int) error {
		remediated++
		assert.Equal(t, 2026, year)
		return nil
	})

	// WHEN the check runs with remediation enabled
	report, err := engine.Check(context.Background(), 2026, true)
	require.NoError(t, err)

	// THEN the remediator ran once and the re-check passes
	assert.Equal(t, 1, remediated)
	assert.True(t, report.Remediated)
	assert.True(t, report.OK)
	assert.Equal(t, 2, source.loads)
}

func TestEngineRemediationFailureBecomesIssue(t *testing.T) {
	source := &fakeSource{snapshots: []*Records{emptyTablesRecords()}}
	engine := NewEngine(source, func(_ context.Context, _ int) error {
		return errors.New("every source is down")
	})

	report, err := engine.Check(context.Background(), 2026, true)
	require.NoError(t, err) // a failing remediation is a finding, not an error
	assert.False(t, report.OK)
	assert.False(t, report.Remediated)
	assert.True(t, hasIssueContaining(report, "table remediation failed"))
	assert.Equal(t, 1, source.loads)
}

func TestEngineSkipsRemediationWhenTablesComplete(t *testing.T) {
	// GIVEN a healthy snapshot with an unrelated finding
	r := healthyRecords()
	r.Thirteenths = append(r.Thirteenths, thirteenthOutsideWindow())
	source := &fakeSource{snapshots: []*Records{r}}

	remediated := false
	engine := NewEngine(source, func(_ context.Context, _ int) error {
		remediated = true
		return nil
	})

	report, err := engine.Check(context.Background(), 2026, true)
	require.NoError(t, err)

	// THEN remediation only reacts to table problems
	assert.False(t, remediated)
	assert.False(t, report.OK)
}

func TestEngineSourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("database locked")}
	engine := NewEngine(source, nil)

	_, err := engine.Check(context.Background(), 2026, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load compliance data for 2026")
}

func thirteenthOutsideWindow() payroll.ThirteenthRecord {
	return payroll.ThirteenthRecord{
		EmployeeID:   "e1",
		Year:         2026,
		PaymentType:  payroll.ThirteenthSecondInstallment,
		PaymentMonth: 11,
		PayDate:      datePtr(tax.Date(2026, time.November, 25)),
	}
}
