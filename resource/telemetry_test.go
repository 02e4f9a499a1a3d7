package resource

import (
	"net/http"
	"testing"

	"github.com/gbl08ma/firedispatch/dispatch"
	"github.com/gbl08ma/firedispatch/memstore"
	"github.com/gbl08ma/firedispatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yarf-framework/yarf"
)

func TestTelemetryReportsRequests(t *testing.T) {
	s := memstore.New()
	s.AddStation(types.Station{ID: "alpha", Name: "Alpha", CallSign: "ALPHA-1", Commission: types.InCommission})
	coordinator := dispatch.NewCoordinator(s)

	requests := make(chan interface{}, 1)
	y := yarf.New()
	v1 := yarf.RouteGroup("/v1")
	v1.Insert(new(Telemetry).WithChannel(requests))
	v1.Add("/stations", new(Station).WithCoordinator(coordinator))
	y.AddGroup(v1)

	rec := do(t, y, "GET", "/v1/stations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, requests, 1)
	assert.Equal(t, "/v1/stations", <-requests)

	// a full channel drops the report instead of blocking the request
	requests <- "pending"
	rec = do(t, y, "GET", "/v1/stations", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, requests, 1)
}
