package resource

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gbl08ma/firedispatch/dispatch"
	"github.com/gbl08ma/firedispatch/memstore"
	"github.com/gbl08ma/firedispatch/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yarf-framework/yarf"
	msgpack "gopkg.in/vmihailenco/msgpack.v2"
)

func newTestServer(t *testing.T) (*yarf.Yarf, *dispatch.Coordinator) {
	t.Helper()
	s := memstore.New()
	s.AddStation(types.Station{ID: "alpha", Name: "Alpha", CallSign: "ALPHA-1", Commission: types.InCommission})
	s.AddStation(types.Station{ID: "bravo", Name: "Bravo", CallSign: "BRAVO-2", Commission: types.InCommission})
	s.AddStation(types.Station{ID: "charlie", Name: "Charlie", CallSign: "CHARLIE-3", Commission: types.OutOfCommission})
	s.AddDepartment(types.Department{ID: "alpha-rescue", Name: "Rescue", StationID: "alpha"})
	s.AddDepartment(types.Department{ID: "alpha-admin", Name: "Administration", StationID: "alpha"})
	s.AddUnit(types.Unit{ID: "rescue-1", Name: "Rescue 1", DepartmentID: "alpha-rescue"})
	s.AddAlert(types.Alert{ID: "fire-alert", Type: "fire", Name: "Warehouse fire",
		Priority: types.PriorityCritical, StationID: "alpha", Status: types.StatusActive, ReportedAt: time.Now()})
	s.AddIncident(types.Incident{ID: "fire", AlertID: "fire-alert", StationID: "alpha", DepartmentID: "alpha-rescue",
		UnitID: "rescue-1", Priority: types.PriorityCritical, Status: types.StatusActive, CreatedAt: time.Now()})
	s.AddAlert(types.Alert{ID: "flood-alert", Type: "flood", Name: "Basement flood",
		Priority: types.PriorityLow, StationID: "alpha", Status: types.StatusPending, ReportedAt: time.Now()})

	coordinator := dispatch.NewCoordinator(s)

	y := yarf.New()
	v1 := yarf.RouteGroup("/v1")
	v1.Add("/stations", new(Station).WithCoordinator(coordinator))
	v1.Add("/stations/:id", new(Station).WithCoordinator(coordinator))
	v1.Add("/stations/:id/eligibility", new(StationEligibility).WithCoordinator(coordinator))
	v1.Add("/stations/:id/referraloptions", new(StationReferralOptions).WithCoordinator(coordinator))
	v1.Add("/stations/:id/urgent", new(StationUrgency).WithCoordinator(coordinator))
	v1.Add("/incidents", new(Incident).WithCoordinator(coordinator))
	v1.Add("/incidents/:id", new(Incident).WithCoordinator(coordinator))
	v1.Add("/incidents/:id/:action", new(IncidentAction).WithCoordinator(coordinator))
	v1.Add("/alerts", new(Alert).WithCoordinator(coordinator))
	v1.Add("/alerts/:id", new(Alert).WithCoordinator(coordinator))
	v1.Add("/alerts/:id/accept", new(AlertAcceptance).WithCoordinator(coordinator))
	v1.Add("/assignments/validate", new(AssignmentValidation).WithCoordinator(coordinator))
	v1.Add("/referrals", new(Referral).WithCoordinator(coordinator))
	y.AddGroup(v1)
	return y, coordinator
}

func do(t *testing.T, y *yarf.Yarf, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	y.ServeHTTP(rec, req)
	return rec
}

func decodeFieldErrors(t *testing.T, rec *httptest.ResponseRecorder) []apiFieldError {
	t.Helper()
	var fields []apiFieldError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields), rec.Body.String())
	return fields
}

func TestGetStations(t *testing.T) {
	y, _ := newTestServer(t)

	rec := do(t, y, "GET", "/v1/stations", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stations []apiStation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stations))
	require.Len(t, stations, 3)
	assert.Equal(t, "ALPHA-1", stations[0].CallSign)

	rec = do(t, y, "GET", "/v1/stations/alpha", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var station struct {
		ID          string          `json:"id"`
		Departments []apiDepartment `json:"departments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &station))
	assert.Equal(t, "alpha", station.ID)
	require.Len(t, station.Departments, 2)
	assert.Equal(t, "alpha-rescue", station.Departments[0].ID)
	assert.True(t, station.Departments[0].UnitRequired)
	assert.False(t, station.Departments[1].UnitRequired)

	rec = do(t, y, "GET", "/v1/stations/zulu", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetEligibility(t *testing.T) {
	y, _ := newTestServer(t)

	rec := do(t, y, "GET", "/v1/stations/alpha/eligibility", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var eligibility apiEligibility
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &eligibility))
	assert.False(t, eligibility.Eligible)
	assert.Equal(t, "Station has 2 active alert(s).", eligibility.Reason)
	assert.Equal(t, 2, eligibility.ActiveAlerts)
	assert.Equal(t, 1, eligibility.ActiveIncidents)

	rec = do(t, y, "GET", "/v1/stations/alpha/referraloptions", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var options []apiReferralOption
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &options))
	require.Len(t, options, 2)
	assert.True(t, options[0].Eligible)
	assert.Equal(t, "Station is out of commission.", options[1].Reason)
}

func TestIncidentActions(t *testing.T) {
	y, _ := newTestServer(t)

	rec := do(t, y, "POST", "/v1/incidents/fire/dispatch", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var incident apiIncident
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &incident))
	assert.Equal(t, types.StatusDispatched, incident.Status)
	assert.NotNil(t, incident.Dispatched)
	assert.Nil(t, incident.EnRoute)
	assert.Equal(t, 2, incident.Version)

	rec = do(t, y, "POST", "/v1/incidents/fire/onscene", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	fields := decodeFieldErrors(t, rec)
	require.Len(t, fields, 1)
	assert.Equal(t, string(dispatch.KindInvalidTransition), fields[0].Code)

	rec = do(t, y, "POST", "/v1/incidents/fire/close", map[string]string{"reason": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields = decodeFieldErrors(t, rec)
	require.Len(t, fields, 1)
	assert.Equal(t, "reason", fields[0].Field)
	assert.Equal(t, dispatch.CodeMissingReason, fields[0].Code)

	rec = do(t, y, "POST", "/v1/incidents/fire/close", map[string]string{"reason": "Contained"})
	require.Equal(t, http.StatusOK, rec.Code)
	incident = apiIncident{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &incident))
	assert.Equal(t, types.StatusCompleted, incident.Status)
	assert.Equal(t, 3, incident.Version)
	assert.NotNil(t, incident.Closed)
	assert.Contains(t, incident.Narrative, "Closed: Contained")

	rec = do(t, y, "POST", "/v1/incidents/fire/dispatch", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	fields = decodeFieldErrors(t, rec)
	assert.Equal(t, string(dispatch.KindAlreadyTerminal), fields[0].Code)

	rec = do(t, y, "POST", "/v1/incidents/ghost/dispatch", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReferIncident(t *testing.T) {
	y, c := newTestServer(t)

	rec := do(t, y, "POST", "/v1/incidents/fire/refer", map[string]string{"from": "alpha", "to": "charlie", "reason": "Busy"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	fields := decodeFieldErrors(t, rec)
	require.Len(t, fields, 1)
	assert.Equal(t, string(dispatch.KindIneligibleDestination), fields[0].Code)
	assert.Equal(t, "Station is out of commission.", fields[0].Message)

	rec = do(t, y, "POST", "/v1/incidents/fire/refer", map[string]string{"from": "alpha", "to": "bravo", "reason": "Busy"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var referral apiReferral
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &referral))
	assert.Equal(t, "bravo", referral.ToStationID)
	assert.Len(t, referral.HandoffCode, 6)

	incident, err := c.Incident("fire")
	require.NoError(t, err)
	assert.Equal(t, types.StatusReferred, incident.Status)

	rec = do(t, y, "GET", "/v1/referrals?station=bravo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var referrals []apiReferral
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &referrals))
	assert.Len(t, referrals, 1)
}

func TestAlerts(t *testing.T) {
	y, _ := newTestServer(t)

	rec := do(t, y, "POST", "/v1/alerts", map[string]interface{}{
		"type":     "rescue",
		"name":     "Cat on a tree",
		"priority": "low",
		"station":  "bravo",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var alert apiAlert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alert))
	assert.Equal(t, types.StatusPending, alert.Status)
	assert.Equal(t, "bravo", alert.StationID)

	rec = do(t, y, "POST", "/v1/alerts", map[string]interface{}{"type": "rescue", "name": "x", "priority": "meh", "station": "bravo"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dispatch.CodeInvalidPriority, decodeFieldErrors(t, rec)[0].Code)

	rec = do(t, y, "GET", "/v1/alerts?station=bravo", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var alerts []apiAlert
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alerts))
	assert.Len(t, alerts, 1)

	rec = do(t, y, "POST", "/v1/alerts/flood-alert/accept", map[string]string{"station": "alpha", "department": "alpha-rescue"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, dispatch.CodeUnitRequired, decodeFieldErrors(t, rec)[0].Code)

	rec = do(t, y, "POST", "/v1/alerts/flood-alert/accept", map[string]string{"station": "alpha", "department": "alpha-admin"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var incident apiIncident
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &incident))
	assert.Equal(t, "flood-alert", incident.AlertID)
	assert.Equal(t, types.StatusPending, incident.Status)
}

func TestValidateAssignment(t *testing.T) {
	y, _ := newTestServer(t)

	rec := do(t, y, "POST", "/v1/assignments/validate", map[string]string{"station": "alpha", "department": "alpha-admin", "unit": "rescue-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decodeFieldErrors(t, rec)
	require.Len(t, fields, 1)
	assert.Equal(t, "unitId", fields[0].Field)
	assert.Equal(t, dispatch.CodeUnitDepartmentMismatch, fields[0].Code)

	rec = do(t, y, "POST", "/v1/assignments/validate", map[string]string{"station": "alpha", "department": "alpha-rescue", "unit": "rescue-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	var result apiAssignmentResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Valid)
	assert.True(t, result.UnitRequired)
	assert.Len(t, result.Units, 1)
}

func TestUrgent(t *testing.T) {
	y, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/v1/stations/alpha/urgent", nil)
	req.Header.Set("Accept", "application/msgpack")
	rec := httptest.NewRecorder()
	y.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get("Content-Type"))

	var urgency struct {
		MostUrgent *struct {
			ID string `msgpack:"id"`
		} `msgpack:"mostUrgent"`
	}
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &urgency))
	require.NotNil(t, urgency.MostUrgent)
	assert.Equal(t, "fire", urgency.MostUrgent.ID)
}
