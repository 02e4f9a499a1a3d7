package types

import (
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/gbl08ma/sqalx"
	uuid "github.com/satori/go.uuid"
)

// Referral is the record of an incident being handed off from one station to another.
// Referrals are never modified once created
type Referral struct {
	ID            string
	IncidentID    string
	AlertID       string
	FromStationID string
	ToStationID   string
	Reason        string
	HandoffCode   string
	CreatedAt     time.Time
}

// NewReferral returns a new Referral of the given incident
func NewReferral(incident *Incident, toStationID, reason string) (*Referral, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &Referral{
		ID:            id.String(),
		IncidentID:    incident.ID,
		AlertID:       incident.AlertID,
		FromStationID: incident.StationID,
		ToStationID:   toStationID,
		Reason:        reason,
		HandoffCode:   GenerateHandoffCode(),
		CreatedAt:     time.Now(),
	}, nil
}

// GetReferrals returns a slice with all registered referrals
func GetReferrals(node sqalx.Node) ([]*Referral, error) {
	return getReferralsWithSelect(node, sdb.Select())
}

// GetReferralsForStation returns the referrals sent or received by the given station
func GetReferralsForStation(node sqalx.Node, stationID string) ([]*Referral, error) {
	s := sdb.Select().
		Where(sq.Or{
			sq.Eq{"from_station": stationID},
			sq.Eq{"to_station": stationID},
		})
	return getReferralsWithSelect(node, s)
}

func getReferralsWithSelect(node sqalx.Node, sbuilder sq.SelectBuilder) ([]*Referral, error) {
	referrals := []*Referral{}

	tx, err := node.Beginx()
	if err != nil {
		return referrals, err
	}
	defer tx.Commit() // read-only tx

	rows, err := sbuilder.Columns("id", "incident", "alert", "from_station", "to_station", "reason",
		"handoff_code", "created_at").
		From("referral").
		OrderBy("created_at ASC").
		RunWith(tx).Query()
	if err != nil {
		return referrals, fmt.Errorf("getReferralsWithSelect: %s", err)
	}
	defer rows.Close()

	for rows.Next() {
		var referral Referral
		err := rows.Scan(
			&referral.ID,
			&referral.IncidentID,
			&referral.AlertID,
			&referral.FromStationID,
			&referral.ToStationID,
			&referral.Reason,
			&referral.HandoffCode,
			&referral.CreatedAt)
		if err != nil {
			return referrals, fmt.Errorf("getReferralsWithSelect: %s", err)
		}
		referrals = append(referrals, &referral)
	}
	if err := rows.Err(); err != nil {
		return referrals, fmt.Errorf("getReferralsWithSelect: %s", err)
	}
	return referrals, nil
}

// Insert adds the referral. Referrals are immutable, so an existing ID is an error
func (referral *Referral) Insert(node sqalx.Node) error {
	tx, err := node.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = sdb.Insert("referral").
		Columns("id", "incident", "alert", "from_station", "to_station", "reason", "handoff_code", "created_at").
		Values(referral.ID, referral.IncidentID, referral.AlertID, referral.FromStationID, referral.ToStationID,
			referral.Reason, referral.HandoffCode, referral.CreatedAt).
		RunWith(tx).Exec()
	if err != nil {
		return errors.New("AddReferral: " + err.Error())
	}
	return tx.Commit()
}
