package types

import (
	"github.com/gbl08ma/sqalx"
)

// Store gives transactional access to the reference directory and to the
// incident, alert and referral records
type Store interface {
	Begin() (Tx, error)
}

// Tx is a Store transaction. Every Tx must end with Commit or Rollback;
// calling Rollback after Commit is a no-op, so it can always be deferred
type Tx interface {
	Stations() ([]*Station, error)
	Station(id string) (*Station, error)
	Departments() ([]*Department, error)
	Department(id string) (*Department, error)
	Units() ([]*Unit, error)

	Alerts() ([]*Alert, error)
	Alert(id string) (*Alert, error)
	AlertsForStation(stationID string) ([]*Alert, error)
	SaveAlert(alert *Alert) error

	Incident(id string) (*Incident, error)
	Incidents() ([]*Incident, error)
	OngoingIncidents() ([]*Incident, error)
	IncidentsForStation(stationID string) ([]*Incident, error)
	// SaveIncident inserts incidents with a zero Version and otherwise updates them
	// only if the stored version matches, returning ErrConflict if it doesn't
	SaveIncident(incident *Incident) error

	Referrals() ([]*Referral, error)
	ReferralsForStation(stationID string) ([]*Referral, error)
	InsertReferral(referral *Referral) error

	// LockStation serializes, until the end of the transaction, all transactions
	// that lock the same station
	LockStation(id string) error

	Commit() error
	Rollback() error
}

type sqlStore struct {
	node sqalx.Node
}

// NewStore returns a Store backed by the database behind node
func NewStore(node sqalx.Node) Store {
	return &sqlStore{node: node}
}

func (s *sqlStore) Begin() (Tx, error) {
	tx, err := s.node.Beginx()
	if err != nil {
		return nil, err
	}
	return &sqlTx{node: tx}, nil
}

type sqlTx struct {
	node sqalx.Node
	done bool
}

func (t *sqlTx) Stations() ([]*Station, error) { return GetStations(t.node) }
func (t *sqlTx) Station(id string) (*Station, error) { return GetStation(t.node, id) }
func (t *sqlTx) Departments() ([]*Department, error) { return GetDepartments(t.node) }
func (t *sqlTx) Department(id string) (*Department, error) { return GetDepartment(t.node, id) }
func (t *sqlTx) Units() ([]*Unit, error) { return GetUnits(t.node) }
func (t *sqlTx) Alerts() ([]*Alert, error) { return GetAlerts(t.node) }
func (t *sqlTx) Alert(id string) (*Alert, error) { return GetAlert(t.node, id) }
func (t *sqlTx) SaveAlert(alert *Alert) error { return alert.Update(t.node) }
func (t *sqlTx) Incident(id string) (*Incident, error) { return GetIncident(t.node, id) }
func (t *sqlTx) Incidents() ([]*Incident, error) { return GetIncidents(t.node) }
func (t *sqlTx) OngoingIncidents() ([]*Incident, error) { return GetOngoingIncidents(t.node) }
func (t *sqlTx) SaveIncident(incident *Incident) error { return incident.Update(t.node) }
func (t *sqlTx) Referrals() ([]*Referral, error) { return GetReferrals(t.node) }
func (t *sqlTx) InsertReferral(referral *Referral) error { return referral.Insert(t.node) }
func (t *sqlTx) LockStation(id string) error { return LockStation(t.node, id) }

func (t *sqlTx) AlertsForStation(stationID string) ([]*Alert, error) {
	return GetAlertsForStation(t.node, stationID)
}

func (t *sqlTx) IncidentsForStation(stationID string) ([]*Incident, error) {
	return GetIncidentsForStation(t.node, stationID)
}

func (t *sqlTx) ReferralsForStation(stationID string) ([]*Referral, error) {
	return GetReferralsForStation(t.node, stationID)
}

func (t *sqlTx) Commit() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.node.Commit()
}

func (t *sqlTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.node.Rollback()
}
