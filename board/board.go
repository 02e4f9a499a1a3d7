// Package board publishes the ranked ongoing incidents as Atom feeds, for wall
// displays and feed readers in station control rooms.
package board

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gbl08ma/firedispatch/dispatch"
	"github.com/gbl08ma/firedispatch/types"
	"github.com/gbl08ma/firedispatch/utils"
	"github.com/gorilla/feeds"
	"github.com/gorilla/mux"
	"github.com/hako/durafmt"
)

// Board serves incident feeds
type Board struct {
	coordinator *dispatch.Coordinator
	baseURL     string
	log         *log.Logger
	now         func() time.Time
}

// New returns a Board serving feeds for the incidents handled through coordinator.
// baseURL is used to build the links of feed entries. When empty, links point
// to the host each request was made to
func New(coordinator *dispatch.Coordinator, baseURL string) *Board {
	return &Board{
		coordinator: coordinator,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		log:         log.New(io.Discard, "", 0),
		now:         time.Now,
	}
}

// WithLogger sets the logger for request errors
func (b *Board) WithLogger(logger *log.Logger) *Board {
	b.log = logger
	return b
}

// Router returns the HTTP handler for the feeds
func (b *Board) Router() *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/feeds/incidents.atom", b.IncidentFeed)
	router.HandleFunc("/feeds/{station:[-0-9A-Za-z_]{1,36}}/incidents.atom", b.IncidentFeed)
	router.HandleFunc("/incidents/{id:[-0-9A-Za-z_]{1,36}}", b.IncidentPage)
	return router
}

// Serve starts serving the feeds on addr, blocking until the server stops
func (b *Board) Serve(addr string) {
	b.log.Println("Starting feed server...")

	server := http.Server{
		Addr:    addr,
		Handler: b.Router(),
	}

	err := server.ListenAndServe()
	if err != nil {
		b.log.Println(err)
	}
	b.log.Println("Feed server terminated")
}

// IncidentFeed serves the Atom feed of the station in the route, or of all stations
func (b *Board) IncidentFeed(w http.ResponseWriter, r *http.Request) {
	baseURL := b.baseURL
	if baseURL == "" {
		baseURL = utils.RequestBaseURL(r)
	}
	feed, err := b.buildFeed(baseURL, mux.Vars(r)["station"])
	if err != nil {
		if errors.Is(err, dispatch.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		b.log.Println(utils.GetClientIP(r), err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	atom, err := feed.ToAtom()
	if err != nil {
		b.log.Println(utils.GetClientIP(r), err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/atom+xml; charset=utf-8")
	w.Write([]byte(atom))
}

// IncidentPage serves a plain text summary of the incident in the route.
// Feed entries link here
func (b *Board) IncidentPage(w http.ResponseWriter, r *http.Request) {
	incident, err := b.coordinator.Incident(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, dispatch.ErrNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		b.log.Println(utils.GetClientIP(r), err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	alert, err := b.coordinator.Alert(incident.AlertID)
	if err != nil && !errors.Is(err, dispatch.ErrNotFound) {
		b.log.Println(utils.GetClientIP(r), err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, itemTitle(incident, alert))
	fmt.Fprintln(w, itemDescription(incident, b.now()))
	if incident.Narrative != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, incident.Narrative)
	}
}

// BuildFeed returns the feed of ongoing incidents of the station, most urgent first.
// An empty stationID means every station
func (b *Board) BuildFeed(stationID string) (*feeds.Feed, error) {
	return b.buildFeed(b.baseURL, stationID)
}

func (b *Board) buildFeed(baseURL, stationID string) (*feeds.Feed, error) {
	title := "Ongoing incidents"
	link := baseURL + "/feeds/incidents.atom"
	if stationID != "" {
		station, err := b.coordinator.Station(stationID)
		if err != nil {
			return nil, err
		}
		title = fmt.Sprintf("Ongoing incidents - %s (%s)", station.Name, station.CallSign)
		link = baseURL + "/feeds/" + station.ID + "/incidents.atom"
	}

	ranked, err := b.coordinator.Ranked(stationID)
	if err != nil {
		return nil, err
	}
	alerts, err := b.coordinator.Alerts("")
	if err != nil {
		return nil, err
	}
	alertsByID := make(map[string]*types.Alert, len(alerts))
	for _, alert := range alerts {
		alertsByID[alert.ID] = alert
	}

	now := b.now()
	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: link},
		Description: "Ongoing incidents ordered by urgency",
		Updated:     now,
	}

	feed.Items = []*feeds.Item{}
	for _, incident := range ranked {
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          incident.ID,
			Title:       itemTitle(incident, alertsByID[incident.AlertID]),
			Link:        &feeds.Link{Href: baseURL + "/incidents/" + incident.ID},
			Description: itemDescription(incident, now),
			Created:     incident.CreatedAt,
			Updated:     incident.UpdatedAt,
		})
	}
	return feed, nil
}

func itemTitle(incident *types.Incident, alert *types.Alert) string {
	name := incident.ID
	if alert != nil {
		name = alert.Name
		if alert.LocationName != "" {
			name += ", " + alert.LocationName
		}
	}
	return fmt.Sprintf("[%s] %s", strings.ToUpper(string(incident.Priority)), name)
}

func itemDescription(incident *types.Incident, now time.Time) string {
	age := durafmt.Parse(now.Sub(incident.CreatedAt).Truncate(time.Minute))
	description := fmt.Sprintf("Status: %s. Station: %s. Open for %s.",
		strings.Replace(string(incident.Status), "_", " ", -1), incident.StationID, age.String())
	if incident.UnitID != "" {
		description += " Unit: " + incident.UnitID + "."
	}
	return description
}
