package dispatch

import (
	"github.com/gbl08ma/firedispatch/types"
	cache "github.com/patrickmn/go-cache"
	"github.com/thoas/go-funk"
	"golang.org/x/sync/errgroup"
)

// jurisdiction is the ranking scope covering every station
const jurisdiction = ""

type rankingEntry struct {
	generation uint64
	incidents  []*types.Incident
}

func (c *Coordinator) generation(scope string) uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return c.generations[scope]
}

// invalidateRankings discards the cached rankings of the given stations and of the jurisdiction.
// It must be called after the commit and before the command returns
func (c *Coordinator) invalidateRankings(stationIDs ...string) {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	for _, scope := range append(stationIDs, jurisdiction) {
		c.generations[scope]++
		c.rankings.Delete(scope)
	}
}

// Ranked returns the non-terminal incidents of the station, or of every station if stationID
// is empty, ordered from most to least urgent
func (c *Coordinator) Ranked(stationID string) ([]*types.Incident, error) {
	// the generation must be read before loading, so that a ranking computed from
	// rows older than a concurrent command is never served after that command returns
	gen := c.generation(stationID)
	if v, found := c.rankings.Get(stationID); found {
		if entry := v.(rankingEntry); entry.generation == gen {
			return copyIncidents(entry.incidents), nil
		}
	}

	incidents, err := c.ongoingIncidents(stationID)
	if err != nil {
		return nil, err
	}
	ranked := RankIncidents(incidents)
	c.rankings.Set(stationID, rankingEntry{generation: gen, incidents: ranked}, cache.DefaultExpiration)
	return copyIncidents(ranked), nil
}

// MostUrgent returns the incident of the station (or of every station, if stationID is empty)
// that most needs operator attention, or nil if there are no ongoing incidents
func (c *Coordinator) MostUrgent(stationID string) (*types.Incident, error) {
	ranked, err := c.Ranked(stationID)
	if err != nil {
		return nil, err
	}
	return ComputeMostUrgent(ranked), nil
}

func (c *Coordinator) ongoingIncidents(stationID string) ([]*types.Incident, error) {
	tx, err := c.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Commit() // read-only tx

	if stationID == jurisdiction {
		return tx.OngoingIncidents()
	}
	if _, err := tx.Station(stationID); err != nil {
		return nil, mapStoreError(err)
	}
	incidents, err := tx.IncidentsForStation(stationID)
	if err != nil {
		return nil, err
	}
	return funk.Filter(incidents, func(i *types.Incident) bool {
		return !i.Status.IsTerminal()
	}).([]*types.Incident), nil
}

func copyIncidents(incidents []*types.Incident) []*types.Incident {
	result := make([]*types.Incident, len(incidents))
	for i := range incidents {
		incident := *incidents[i]
		result[i] = &incident
	}
	return result
}

// Eligibility is the referral eligibility of a station together with the load it was decided on
type Eligibility struct {
	Eligible bool
	Reason   string
	Load     StationLoad
}

// StationEligibility decides whether the station may currently receive a referred incident,
// reading the verdict and the load from the same snapshot
func (c *Coordinator) StationEligibility(stationID string) (Eligibility, error) {
	tx, err := c.store.Begin()
	if err != nil {
		return Eligibility{}, err
	}
	defer tx.Commit() // read-only tx

	station, alerts, incidents, err := loadStationSnapshot(tx, stationID)
	if err != nil {
		return Eligibility{}, err
	}
	eligible, reason := CheckReferralEligibility(station, alerts, incidents)
	return Eligibility{
		Eligible: eligible,
		Reason:   reason,
		Load:     ComputeStationLoad(stationID, alerts, incidents),
	}, nil
}

// CheckReferralEligibility decides whether the station may currently receive a referred incident
func (c *Coordinator) CheckReferralEligibility(stationID string) (eligible bool, reason string, err error) {
	e, err := c.StationEligibility(stationID)
	if err != nil {
		return false, "", err
	}
	return e.Eligible, e.Reason, nil
}

// StationLoad returns the live load of the station
func (c *Coordinator) StationLoad(stationID string) (StationLoad, error) {
	tx, err := c.store.Begin()
	if err != nil {
		return StationLoad{}, err
	}
	defer tx.Commit() // read-only tx

	_, alerts, incidents, err := loadStationSnapshot(tx, stationID)
	if err != nil {
		return StationLoad{}, err
	}
	return ComputeStationLoad(stationID, alerts, incidents), nil
}

func loadStationSnapshot(tx types.Tx, stationID string) (*types.Station, []*types.Alert, []*types.Incident, error) {
	station, err := tx.Station(stationID)
	if err != nil {
		return nil, nil, nil, mapStoreError(err)
	}
	alerts, err := tx.AlertsForStation(stationID)
	if err != nil {
		return nil, nil, nil, err
	}
	incidents, err := tx.IncidentsForStation(stationID)
	if err != nil {
		return nil, nil, nil, err
	}
	return station, alerts, incidents, nil
}

// ReferralOption is a possible destination for a referral, as shown in a station picker
type ReferralOption struct {
	Station  *types.Station
	Eligible bool
	Reason   string
}

// ReferralOptions evaluates every station other than fromStationID as a referral destination.
// Options are returned in the station directory order
func (c *Coordinator) ReferralOptions(fromStationID string) ([]ReferralOption, error) {
	candidates, err := c.referralCandidates(fromStationID)
	if err != nil {
		return nil, err
	}

	options := make([]ReferralOption, len(candidates))
	var g errgroup.Group
	g.SetLimit(8)
	for i, station := range candidates {
		g.Go(func() error {
			eligible, reason, err := c.CheckReferralEligibility(station.ID)
			if err != nil {
				return err
			}
			options[i] = ReferralOption{Station: station, Eligible: eligible, Reason: reason}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return options, nil
}

func (c *Coordinator) referralCandidates(fromStationID string) ([]*types.Station, error) {
	tx, err := c.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Commit() // read-only tx

	if _, err := tx.Station(fromStationID); err != nil {
		return nil, mapStoreError(err)
	}
	stations, err := tx.Stations()
	if err != nil {
		return nil, err
	}
	return funk.Filter(stations, func(s *types.Station) bool {
		return s.ID != fromStationID
	}).([]*types.Station), nil
}

// Directory returns a snapshot of the departments and units of every station
func (c *Coordinator) Directory() (Directory, error) {
	tx, err := c.store.Begin()
	if err != nil {
		return Directory{}, err
	}
	defer tx.Commit() // read-only tx
	return loadDirectory(tx)
}

func loadDirectory(tx types.Tx) (Directory, error) {
	departments, err := tx.Departments()
	if err != nil {
		return Directory{}, err
	}
	units, err := tx.Units()
	if err != nil {
		return Directory{}, err
	}
	return Directory{Departments: departments, Units: units}, nil
}

// ValidateAssignment validates an assignment against the current directory
func (c *Coordinator) ValidateAssignment(stationID, departmentID, unitID *string) ([]FieldError, error) {
	dir, err := c.Directory()
	if err != nil {
		return nil, err
	}
	return ValidateAssignment(dir, stationID, departmentID, unitID), nil
}

// Stations returns every station in the directory
func (c *Coordinator) Stations() ([]*types.Station, error) {
	tx, err := c.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Commit() // read-only tx
	return tx.Stations()
}

// Station returns the station with the given ID
func (c *Coordinator) Station(id string) (*types.Station, error) {
	tx, err := c.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Commit() // read-only tx
	station, err := tx.Station(id)
	return station, mapStoreError(err)
}

// Incident returns the incident with the given ID
func (c *Coordinator) Incident(id string) (*types.Incident, error) {
	tx, err := c.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Commit() // read-only tx
	incident, err := tx.Incident(id)
	return incident, mapStoreError(err)
}

// Incidents returns the incidents of the station, or every incident if stationID is empty
func (c *Coordinator) Incidents(stationID string) ([]*types.Incident, error) {
	tx, err := c.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Commit() // read-only tx
	if stationID == "" {
		return tx.Incidents()
	}
	return tx.IncidentsForStation(stationID)
}

// Alert returns the alert with the given ID
func (c *Coordinator) Alert(id string) (*types.Alert, error) {
	tx, err := c.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Commit() // read-only tx
	alert, err := tx.Alert(id)
	return alert, mapStoreError(err)
}

// Alerts returns the alerts attributed to the station, or every alert if stationID is empty
func (c *Coordinator) Alerts(stationID string) ([]*types.Alert, error) {
	tx, err := c.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Commit() // read-only tx
	if stationID == "" {
		return tx.Alerts()
	}
	return tx.AlertsForStation(stationID)
}

// Referrals returns the referrals sent or received by the station, or every referral if stationID is empty
func (c *Coordinator) Referrals(stationID string) ([]*types.Referral, error) {
	tx, err := c.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Commit() // read-only tx
	if stationID == "" {
		return tx.Referrals()
	}
	return tx.ReferralsForStation(stationID)
}
