package dispatch

import (
	"sort"

	"github.com/gbl08ma/firedispatch/types"
)

// Ranks used for urgency ordering. Values not listed rank 0
var (
	priorityRanks = map[types.Priority]int{
		types.PriorityCritical: 4,
		types.PriorityHigh:     3,
		types.PriorityMedium:   2,
		types.PriorityLow:      1,
	}
	statusRanks = map[types.Status]int{
		types.StatusActive:     5,
		types.StatusPending:    4,
		types.StatusDispatched: 3,
		types.StatusEnRoute:    2,
		types.StatusOnScene:    1,
	}
)

// PriorityRank returns the urgency rank of a priority, from 4 (critical) to 0 (unknown)
func PriorityRank(p types.Priority) int {
	return priorityRanks[p]
}

// StatusRank returns the urgency rank of an incident status. Terminal and unknown statuses rank 0
func StatusRank(s types.Status) int {
	return statusRanks[s]
}

// moreUrgent reports whether a must come strictly before b
func moreUrgent(a, b *types.Incident) bool {
	pa, pb := PriorityRank(a.Priority), PriorityRank(b.Priority)
	if pa != pb {
		return pa > pb
	}
	return StatusRank(a.Status) > StatusRank(b.Status)
}

// RankIncidents returns a copy of incidents ordered from most to least urgent:
// by priority, then by status. Incidents that rank the same keep their relative order.
// No scope filtering is performed
func RankIncidents(incidents []*types.Incident) []*types.Incident {
	ranked := make([]*types.Incident, len(incidents))
	copy(ranked, incidents)
	sort.SliceStable(ranked, func(i, j int) bool {
		return moreUrgent(ranked[i], ranked[j])
	})
	return ranked
}

// ComputeMostUrgent returns the incident that most needs operator attention,
// or nil if incidents is empty
func ComputeMostUrgent(incidents []*types.Incident) *types.Incident {
	var most *types.Incident
	for _, incident := range incidents {
		// strict comparison keeps the earliest of equally ranked incidents
		if most == nil || moreUrgent(incident, most) {
			most = incident
		}
	}
	return most
}
