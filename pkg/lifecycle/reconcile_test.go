package lifecycle

import (
	"testing"
	"time"

	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func tsPtr(value string) *time.Time {
	t := ts(value)
	return &t
}

func date(value string) models.Date {
	d, err := models.ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(value string) *models.Date {
	d := date(value)
	return &d
}

func TestReconcile_StartOnEmptyState(t *testing.T) {
	decision := Reconcile(nil, ActionStart, date("2024-03-03"), ts("2024-03-03T10:00:00Z"))

	require.True(t, decision.Accepted)
	assert.Equal(t, MsgAccepted, decision.Message)
	require.NotNil(t, decision.Fields.StartDate)
	assert.Equal(t, "2024-03-03", decision.Fields.StartDate.String())
	require.NotNil(t, decision.Fields.StartEventCreatedAt)
	assert.Nil(t, decision.Fields.EndDate)
	assert.Nil(t, decision.Fields.EndEventCreatedAt)
}

func TestReconcile_StartNewerSubmissionOverwrites(t *testing.T) {
	state := &models.ComponentState{
		StartDate:           datePtr("2024-03-03"),
		StartEventCreatedAt: tsPtr("2024-03-03T10:00:00Z"),
	}

	// Earlier business date but later submission is a permitted correction.
	decision := Reconcile(state, ActionStart, date("2024-02-01"), ts("2024-03-05T10:00:00Z"))

	require.True(t, decision.Accepted)
	assert.Equal(t, "2024-02-01", decision.Fields.StartDate.String())
}

func TestReconcile_StartStaleOrDuplicateRejected(t *testing.T) {
	state := &models.ComponentState{
		StartDate:           datePtr("2024-03-03"),
		StartEventCreatedAt: tsPtr("2024-03-03T10:00:00Z"),
	}

	tests := []struct {
		name      string
		createdAt string
	}{
		{"older submission", "2024-03-02T10:00:00Z"},
		{"equal submission", "2024-03-03T10:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Reconcile(state, ActionStart, date("2024-03-04"), ts(tt.createdAt))
			require.False(t, decision.Accepted)
			assert.Equal(t, MsgStaleStart, decision.Message)
		})
	}
}

func TestReconcile_StartAfterEndRejected(t *testing.T) {
	state := &models.ComponentState{
		StartDate:           datePtr("2024-03-03"),
		StartEventCreatedAt: tsPtr("2024-03-03T10:00:00Z"),
		EndDate:             datePtr("2024-04-04"),
		EndEventCreatedAt:   tsPtr("2024-04-04T10:00:00Z"),
	}

	decision := Reconcile(state, ActionStart, date("2024-05-01"), ts("2024-04-05T10:00:00Z"))

	require.False(t, decision.Accepted)
	assert.Equal(t, MsgRestartAfterEnd, decision.Message)
}

func TestReconcile_StartBeforeEndSubmissionAllowed(t *testing.T) {
	// An earlier-submitted start arriving after the end was recorded is a
	// late correction, not a restart.
	state := &models.ComponentState{
		StartDate:           datePtr("2024-03-03"),
		StartEventCreatedAt: tsPtr("2024-03-03T10:00:00Z"),
		EndDate:             datePtr("2024-04-04"),
		EndEventCreatedAt:   tsPtr("2024-04-04T10:00:00Z"),
	}

	decision := Reconcile(state, ActionStart, date("2024-03-01"), ts("2024-03-10T10:00:00Z"))

	require.True(t, decision.Accepted)
	assert.Equal(t, "2024-03-01", decision.Fields.StartDate.String())
}

func TestReconcile_EndWithoutStartRejected(t *testing.T) {
	tests := []struct {
		name  string
		state *models.ComponentState
	}{
		{"no state row", nil},
		{"row without start", &models.ComponentState{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := Reconcile(tt.state, ActionEnd, date("2024-04-04"), ts("2024-04-04T10:00:00Z"))
			require.False(t, decision.Accepted)
			assert.Equal(t, MsgEndWithoutStart, decision.Message)
		})
	}
}

func TestReconcile_EndAccepted(t *testing.T) {
	state := &models.ComponentState{
		StartDate:           datePtr("2024-03-03"),
		StartEventCreatedAt: tsPtr("2024-03-03T10:00:00Z"),
	}

	decision := Reconcile(state, ActionEnd, date("2024-04-04"), ts("2024-04-04T10:00:00Z"))

	require.True(t, decision.Accepted)
	require.NotNil(t, decision.Fields.EndDate)
	assert.Equal(t, "2024-04-04", decision.Fields.EndDate.String())
	assert.Nil(t, decision.Fields.StartDate)
}

func TestReconcile_EndSubmittedBeforeStartRejected(t *testing.T) {
	state := &models.ComponentState{
		StartDate:           datePtr("2024-03-03"),
		StartEventCreatedAt: tsPtr("2024-03-03T10:00:00Z"),
	}

	decision := Reconcile(state, ActionEnd, date("2024-04-04"), ts("2024-03-03T09:00:00Z"))

	require.False(t, decision.Accepted)
	assert.Equal(t, MsgEndBeforeStart, decision.Message)
}

func TestReconcile_EndStaleOrDuplicateRejected(t *testing.T) {
	state := &models.ComponentState{
		StartDate:           datePtr("2024-03-03"),
		StartEventCreatedAt: tsPtr("2024-03-03T10:00:00Z"),
		EndDate:             datePtr("2024-04-04"),
		EndEventCreatedAt:   tsPtr("2024-04-04T10:00:00Z"),
	}

	decision := Reconcile(state, ActionEnd, date("2024-04-05"), ts("2024-04-04T10:00:00Z"))

	require.False(t, decision.Accepted)
	assert.Equal(t, MsgStaleEnd, decision.Message)
}

func TestReconcile_EndDateBeforeStartDateRejected(t *testing.T) {
	state := &models.ComponentState{
		StartDate:           datePtr("2024-03-03"),
		StartEventCreatedAt: tsPtr("2024-03-03T10:00:00Z"),
	}

	decision := Reconcile(state, ActionEnd, date("2024-03-01"), ts("2024-04-04T10:00:00Z"))

	require.False(t, decision.Accepted)
	assert.Equal(t, MsgEndBeforeStart, decision.Message)
}

func TestReconcile_NaiveTimestampsComparedAsUTC(t *testing.T) {
	// A stored instant with an offset and an incoming naive instant must be
	// compared on the absolute timeline.
	stored := ts("2024-03-03T12:00:00+02:00") // 10:00 UTC
	state := &models.ComponentState{
		StartDate:           datePtr("2024-03-03"),
		StartEventCreatedAt: &stored,
	}

	incoming, err := models.ParseTimestamp("2024-03-03T10:00:00")
	require.NoError(t, err)

	decision := Reconcile(state, ActionStart, date("2024-03-03"), incoming.Time)
	require.False(t, decision.Accepted)
	assert.Equal(t, MsgStaleStart, decision.Message)

	later, err := models.ParseTimestamp("2024-03-03T10:00:01")
	require.NoError(t, err)

	decision = Reconcile(state, ActionStart, date("2024-03-03"), later.Time)
	require.True(t, decision.Accepted)
}
