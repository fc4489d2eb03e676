// Package catalog holds the static reference lists consumed by the portals:
// the hospital drug formulary extract, the requesting services, the request
// type definitions, and the committee meeting calendar. The lists are
// embedded at build time and never mutated at runtime.
package catalog

import (
	"embed"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

//go:embed data/*.json
var dataFS embed.FS

type Drug struct {
	ID           string  `json:"id"`
	Name         string  `json:"nome"`
	DCI          string  `json:"dci"`
	Presentation string  `json:"apresentacao"`
	UnitPrice    float64 `json:"precoUnidade"`
	Tier         string  `json:"escalao"`
	Manufacturer string  `json:"fabricante"`
}

type Service struct {
	ID   string `json:"id"`
	Name string `json:"nome"`
	Code string `json:"codigo"`
}

type RequestType struct {
	ID          string `json:"id"`
	Name        string `json:"nome"`
	Description string `json:"descricao"`
	// RequiresEthicsApproval marks types that must also pass the ethics
	// committee (CES) after a favorable CFT verdict.
	RequiresEthicsApproval bool `json:"requerCES"`
}

type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "agendada"
	MeetingHeld      MeetingStatus = "realizada"
	MeetingCancelled MeetingStatus = "cancelada"
)

type MeetingSlot struct {
	ID      string        `json:"id"`
	Date    string        `json:"data"` // YYYY-MM-DD
	Time    string        `json:"hora"`
	Status  MeetingStatus `json:"estado"`
	Minutes string        `json:"numeroAta,omitempty"`
}

func (m MeetingSlot) On() (time.Time, error) {
	return time.Parse("2006-01-02", m.Date)
}

// Catalog is the read-only reference data provider injected into the portal
// controllers.
type Catalog struct {
	drugs        []Drug
	services     []Service
	requestTypes []RequestType
	meetings     []MeetingSlot

	drugsByID    map[string]Drug
	servicesByID map[string]Service
	typesByID    map[string]RequestType
	meetingsByID map[string]MeetingSlot
}

func Load() (*Catalog, error) {
	c := &Catalog{
		drugsByID:    make(map[string]Drug),
		servicesByID: make(map[string]Service),
		typesByID:    make(map[string]RequestType),
		meetingsByID: make(map[string]MeetingSlot),
	}

	if err := decode("data/drugs.json", &c.drugs); err != nil {
		return nil, err
	}
	if err := decode("data/services.json", &c.services); err != nil {
		return nil, err
	}
	if err := decode("data/request_types.json", &c.requestTypes); err != nil {
		return nil, err
	}
	if err := decode("data/meetings.json", &c.meetings); err != nil {
		return nil, err
	}

	for _, d := range c.drugs {
		c.drugsByID[d.ID] = d
	}
	for _, s := range c.services {
		c.servicesByID[s.ID] = s
	}
	for _, t := range c.requestTypes {
		c.typesByID[t.ID] = t
	}
	for _, m := range c.meetings {
		c.meetingsByID[m.ID] = m
	}

	return c, nil
}

func decode(path string, out any) error {
	raw, err := dataFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func (c *Catalog) Drugs() []Drug               { return c.drugs }
func (c *Catalog) Services() []Service         { return c.services }
func (c *Catalog) RequestTypes() []RequestType { return c.requestTypes }
func (c *Catalog) Meetings() []MeetingSlot     { return c.meetings }

func (c *Catalog) DrugByID(id string) (Drug, bool) {
	d, ok := c.drugsByID[id]
	return d, ok
}

func (c *Catalog) ServiceByID(id string) (Service, bool) {
	s, ok := c.servicesByID[id]
	return s, ok
}

func (c *Catalog) RequestTypeByID(id string) (RequestType, bool) {
	t, ok := c.typesByID[id]
	return t, ok
}

func (c *Catalog) MeetingByID(id string) (MeetingSlot, bool) {
	m, ok := c.meetingsByID[id]
	return m, ok
}

// UpcomingMeetings returns the scheduled slots on or after the given day,
// in calendar order. Slots with unparseable dates are skipped. The cutoff is
// the calendar date in from's own location; slot dates parse as UTC
// midnights, so the comparison stays a plain date comparison.
func (c *Catalog) UpcomingMeetings(from time.Time) []MeetingSlot {
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	var out []MeetingSlot
	for _, m := range c.meetings {
		if m.Status != MeetingScheduled {
			continue
		}
		on, err := m.On()
		if err != nil {
			continue
		}
		if !on.Before(day) {
			out = append(out, m)
		}
	}
	return out
}
