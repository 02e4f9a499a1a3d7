package memstore

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gbl08ma/firedispatch/types"
	"gopkg.in/yaml.v3"
)

// Seed is the YAML representation of the initial contents of a Store
type Seed struct {
	Stations []struct {
		ID          string    `yaml:"id"`
		Name        string    `yaml:"name"`
		CallSign    string    `yaml:"callSign"`
		Commission  string    `yaml:"commission"`
		Location    []float64 `yaml:"location"`
		Departments []struct {
			ID    string `yaml:"id"`
			Name  string `yaml:"name"`
			Units []struct {
				ID   string `yaml:"id"`
				Name string `yaml:"name"`
			} `yaml:"units"`
		} `yaml:"departments"`
	} `yaml:"stations"`
	Alerts []struct {
		ID           string    `yaml:"id"`
		Type         string    `yaml:"type"`
		Name         string    `yaml:"name"`
		Location     []float64 `yaml:"location"`
		LocationName string    `yaml:"locationName"`
		MapURL       string    `yaml:"mapURL"`
		Priority     string    `yaml:"priority"`
		Station      string    `yaml:"station"`
		Status       string    `yaml:"status"`
		ReportedAt   time.Time `yaml:"reportedAt"`
	} `yaml:"alerts"`
	Incidents []struct {
		ID         string    `yaml:"id"`
		Alert      string    `yaml:"alert"`
		Station    string    `yaml:"station"`
		Department string    `yaml:"department"`
		Unit       string    `yaml:"unit"`
		Priority   string    `yaml:"priority"`
		Status     string    `yaml:"status"`
		CreatedAt  time.Time `yaml:"createdAt"`
	} `yaml:"incidents"`
}

// LoadFile reads a YAML seed from the file at path into a new Store
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Load reads a YAML seed from r into a new Store
func Load(r io.Reader) (*Store, error) {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && err != io.EOF {
		return nil, fmt.Errorf("memstore: decoding seed: %s", err)
	}
	return FromSeed(&seed)
}

// FromSeed returns a new Store with the contents of seed
func FromSeed(seed *Seed) (*Store, error) {
	s := New()
	for _, st := range seed.Stations {
		station := types.Station{
			ID:         st.ID,
			Name:       st.Name,
			CallSign:   st.CallSign,
			Commission: types.CommissionStatus(st.Commission),
		}
		if station.Commission == "" {
			station.Commission = types.InCommission
		}
		if len(st.Location) == 2 {
			station.Location = &types.Point{st.Location[0], st.Location[1]}
		}
		s.state.stations[station.ID] = station
		for _, d := range st.Departments {
			s.state.departments[d.ID] = types.Department{ID: d.ID, Name: d.Name, StationID: st.ID}
			for _, u := range d.Units {
				s.state.units[u.ID] = types.Unit{ID: u.ID, Name: u.Name, DepartmentID: d.ID}
			}
		}
	}

	for _, a := range seed.Alerts {
		if _, present := s.state.stations[a.Station]; !present {
			return nil, fmt.Errorf("memstore: alert %s references unknown station %s", a.ID, a.Station)
		}
		alert := types.Alert{
			ID:           a.ID,
			Type:         a.Type,
			Name:         a.Name,
			LocationName: a.LocationName,
			MapURL:       a.MapURL,
			Priority:     types.Priority(a.Priority),
			StationID:    a.Station,
			Status:       types.Status(a.Status),
			ReportedAt:   a.ReportedAt,
		}
		if alert.Status == "" {
			alert.Status = types.StatusPending
		}
		if len(a.Location) == 2 {
			alert.Location = types.Point{a.Location[0], a.Location[1]}
		}
		s.state.alerts[alert.ID] = alert
	}

	for _, i := range seed.Incidents {
		alert, present := s.state.alerts[i.Alert]
		if !present {
			return nil, fmt.Errorf("memstore: incident %s references unknown alert %s", i.ID, i.Alert)
		}
		if _, present := s.state.stations[i.Station]; !present {
			return nil, fmt.Errorf("memstore: incident %s references unknown station %s", i.ID, i.Station)
		}
		incident := types.Incident{
			ID:           i.ID,
			AlertID:      i.Alert,
			StationID:    i.Station,
			DepartmentID: i.Department,
			UnitID:       i.Unit,
			Priority:     types.Priority(i.Priority),
			Status:       types.Status(i.Status),
			CreatedAt:    i.CreatedAt,
			UpdatedAt:    i.CreatedAt,
			Version:      1,
		}
		if incident.Priority == "" {
			incident.Priority = alert.Priority
		}
		if incident.Status == "" {
			incident.Status = types.StatusPending
		}
		s.state.incidents[incident.ID] = incident
	}
	return s, nil
}
