package types

// Status is the lifecycle status of an Incident. Alerts share the same domain and
// mirror the status of the incident derived from them
type Status string

const (
	// StatusPending is the status of a newly reported alert or newly accepted incident
	StatusPending Status = "pending"
	// StatusActive means an operator has taken ownership of the incident
	StatusActive Status = "active"
	// StatusDispatched means resources were dispatched
	StatusDispatched Status = "dispatched"
	// StatusEnRoute means the dispatched unit acknowledged and is travelling
	StatusEnRoute Status = "en_route"
	// StatusOnScene means the unit arrived at the incident location
	StatusOnScene Status = "on_scene"
	// StatusCompleted is a terminal status
	StatusCompleted Status = "completed"
	// StatusCancelled is a terminal status
	StatusCancelled Status = "cancelled"
	// StatusReferred is a terminal status: handling was handed off to another station
	StatusReferred Status = "referred"
)

// IsValid returns whether the status belongs to the known status domain
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusActive, StatusDispatched, StatusEnRoute, StatusOnScene,
		StatusCompleted, StatusCancelled, StatusReferred:
		return true
	}
	return false
}

// IsTerminal returns whether no further transitions are possible from this status
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusReferred
}

// CountsAsLoad returns whether an alert or incident in this status counts
// towards the live load of its station
func (s Status) CountsAsLoad() bool {
	return s == StatusPending || s == StatusActive
}

// AlertStatus returns the status an alert takes while its incident is in this status.
// The alert of an incident being worked on stays active, so it keeps counting towards
// the load of the station; terminal statuses are copied as they are
func (s Status) AlertStatus() Status {
	if s.IsTerminal() {
		return s
	}
	return StatusActive
}

// Priority is the reported priority of an Alert (and of the Incident derived from it)
type Priority string

const (
	// PriorityLow is the lowest priority
	PriorityLow Priority = "low"
	// PriorityMedium is the medium priority
	PriorityMedium Priority = "medium"
	// PriorityHigh is the high priority
	PriorityHigh Priority = "high"
	// PriorityCritical is the highest priority
	PriorityCritical Priority = "critical"
)

// IsValid returns whether the priority is one of the known priorities
func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// CommissionStatus indicates whether a station is operationally available
type CommissionStatus string

const (
	// InCommission stations are operational
	InCommission CommissionStatus = "in_commission"
	// OutOfCommission stations are offline and may not receive referrals
	OutOfCommission CommissionStatus = "out_of_commission"
)
