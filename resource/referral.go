package resource

import (
	"time"

	"github.com/gbl08ma/firedispatch/dispatch"
	"github.com/gbl08ma/firedispatch/types"
	"github.com/ulule/deepcopier"
	"github.com/yarf-framework/yarf"
)

// Referral composites resource
type Referral struct {
	resource
}

type apiReferral struct {
	ID            string    `msgpack:"id" json:"id" xml:"id"`
	IncidentID    string    `msgpack:"incident" json:"incident" xml:"incident"`
	AlertID       string    `msgpack:"alert" json:"alert" xml:"alert"`
	FromStationID string    `msgpack:"from" json:"from" xml:"from"`
	ToStationID   string    `msgpack:"to" json:"to" xml:"to"`
	Reason        string    `msgpack:"reason" json:"reason" xml:"reason"`
	HandoffCode   string    `msgpack:"handoffCode" json:"handoffCode" xml:"handoffCode"`
	CreatedAt     time.Time `msgpack:"createdAt" json:"createdAt" xml:"createdAt"`
}

func toAPIReferral(referral *types.Referral) apiReferral {
	ar := &apiReferral{}
	deepcopier.Copy(*referral).To(ar)
	return *ar
}

// WithCoordinator associates a dispatch Coordinator with this resource
func (r *Referral) WithCoordinator(coordinator *dispatch.Coordinator) *Referral {
	r.coordinator = coordinator
	return r
}

// Get serves HTTP GET requests on this resource
func (r *Referral) Get(c *yarf.Context) error {
	referrals, err := r.coordinator.Referrals(stationFilter(c))
	if err != nil {
		return err
	}
	apireferrals := make([]apiReferral, len(referrals))
	for i := range referrals {
		apireferrals[i] = toAPIReferral(referrals[i])
	}
	RenderData(c, apireferrals)
	return nil
}
