package models

import (
	"encoding/json"
	"time"
)

type EntityType string

const (
	EntityRectangle EntityType = "rectangle" // table
	EntityEllipse   EntityType = "ellipse"   // attribute
	EntityDiamond   EntityType = "diamond"   // relationship marker
)

type Position struct {
	Left int `json:"left"`
	Top  int `json:"top"`
}

type Entity struct {
	ID       string     `json:"id"`
	Type     EntityType `json:"type"`
	Name     string     `json:"name"`
	Position Position   `json:"position"`
}

type Connection struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Diagram is the graph drawn on the canvas. Entity and connection order is
// insertion order and drives statement order in the generated SQL.
type Diagram struct {
	Entities    []Entity     `json:"entities"`
	Connections []Connection `json:"connections"`
}

// MarshalJSON writes empty containers as [] rather than null.
func (d Diagram) MarshalJSON() ([]byte, error) {
	type plain Diagram
	p := plain(d)
	if p.Entities == nil {
		p.Entities = []Entity{}
	}
	if p.Connections == nil {
		p.Connections = []Connection{}
	}
	return json.Marshal(p)
}

// FindEntity returns the first entity with the given id.
func (d *Diagram) FindEntity(id string) (*Entity, bool) {
	for i := range d.Entities {
		if d.Entities[i].ID == id {
			return &d.Entities[i], true
		}
	}
	return nil, false
}

// MoveEntity sets the position of the entity with the given id. An unknown
// id appends a new nameless rectangle at pos and reports created.
func (d *Diagram) MoveEntity(id string, pos Position) (created bool) {
	if e, ok := d.FindEntity(id); ok {
		e.Position = pos
		return false
	}
	d.Entities = append(d.Entities, Entity{
		ID:       id,
		Type:     EntityRectangle,
		Position: pos,
	})
	return true
}

// StorageHandle identifies one saved diagram and its generated SQL.
type StorageHandle struct {
	ID              string    `json:"id"`
	DiagramLocation string    `json:"diagram_location"`
	SQLLocation     string    `json:"sql_location"`
	SavedAt         time.Time `json:"saved_at"`
}

// HandleTimeFormat renders the timestamp based storage id (YYYYMMDD_HHMMSS).
const HandleTimeFormat = "20060102_150405"

func NewStorageHandle(now time.Time) *StorageHandle {
	return &StorageHandle{
		ID:      now.Format(HandleTimeFormat),
		SavedAt: now,
	}
}
