package domain_test

import (
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/nfrund/applydash/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEndpointKey_Names(t *testing.T) {
	assert.Equal(t, "get-stats", domain.EndpointGetStats.Kebab())
	assert.Equal(t, "create-campaign", domain.EndpointCreateCampaign.Kebab())
	assert.Equal(t, "WEBHOOK_GET_APPLICATIONS", domain.EndpointGetApplications.EnvName())
	assert.Equal(t, "WEBHOOK_FIND_JOBS", domain.EndpointFindJobs.EnvName())

	for _, k := range domain.EndpointKeys {
		assert.True(t, k.Valid(), "key %s should be valid", k)
	}
	assert.False(t, domain.EndpointKey("deleteEverything").Valid())
}

func TestParseAction(t *testing.T) {
	for _, a := range domain.Actions {
		got, err := domain.ParseAction(string(a))
		require.NoError(t, err)
		assert.Equal(t, a, got)
	}

	_, err := domain.ParseAction("New Campaign")
	assert.ErrorIs(t, err, domain.ErrUnknownAction, "labels are not identifiers")
}

func TestTransportError(t *testing.T) {
	statusErr := &domain.TransportError{Endpoint: domain.EndpointGetStats, Status: 404}
	assert.Equal(t, "webhook getStats: HTTP error! status: 404", statusErr.Error())
	assert.Nil(t, errors.Unwrap(statusErr))

	netErr := &domain.TransportError{Endpoint: domain.EndpointGetStats, Err: io.ErrUnexpectedEOF}
	assert.ErrorIs(t, netErr, io.ErrUnexpectedEOF)

	var target *domain.TransportError
	wrapped := errors.Join(errors.New("other"), netErr)
	require.ErrorAs(t, wrapped, &target)
	assert.Equal(t, domain.EndpointGetStats, target.Endpoint)
}

func TestCampaign_ProgressPercent(t *testing.T) {
	assert.Equal(t, 0, domain.Campaign{Progress: -4}.ProgressPercent())
	assert.Equal(t, 42, domain.Campaign{Progress: 42.9}.ProgressPercent())
	assert.Equal(t, 100, domain.Campaign{Progress: 180}.ProgressPercent())
}

func TestTimestamp_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
	}{
		{"rfc3339", `"2026-10-01T10:00:00Z"`, time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)},
		{"rfc3339 with offset", `"2026-10-01T12:00:00+02:00"`, time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)},
		{"date only", `"2026-10-01"`, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)},
		{"date time without zone", `"2026-10-01T10:00:00"`, time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)},
		{"epoch millis", `1790848800000`, time.UnixMilli(1790848800000)},
		{"epoch millis as string", `"1790848800000"`, time.UnixMilli(1790848800000)},
		{"null", `null`, time.Time{}},
		{"empty", `""`, time.Time{}},
		{"unrecognized", `"sometime last week"`, time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts domain.Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.in), &ts))
			assert.True(t, tt.want.Equal(ts.Time), "got %v, want %v", ts.Time, tt.want)
		})
	}
}

func TestTimestamp_RejectsNonScalar(t *testing.T) {
	var ts domain.Timestamp
	require.Error(t, json.Unmarshal([]byte(`{"seconds":1}`), &ts))
}

func TestApplications_MixedDateShapesDecode(t *testing.T) {
	body := `[
		{"jobTitle":"A","appliedDate":"2026-10-01"},
		{"jobTitle":"B","appliedDate":"2026-10-01T10:00:00Z"},
		{"jobTitle":"C","appliedDate":1790848800000},
		{"jobTitle":"D"}
	]`
	var apps []domain.Application
	require.NoError(t, json.Unmarshal([]byte(body), &apps))
	require.Len(t, apps, 4)
	assert.Equal(t, 2026, apps[0].AppliedDate.Year())
	assert.Equal(t, 10, apps[1].AppliedDate.Hour())
	assert.False(t, apps[2].AppliedDate.IsZero())
	assert.True(t, apps[3].AppliedDate.IsZero())
}
