package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"er_diagram/internal/apperrors"
)

const sampleDiagram = `{"entities":[{"id":"entity1","type":"rectangle","name":"Customer","position":{"left":10,"top":20}},{"id":"entity2","type":"ellipse","name":"email","position":{"left":30,"top":40}}],"connections":[{"source":"entity1","target":"entity2"}]}`

func TestDecodeDiagramRoundTrip(t *testing.T) {
	d, err := DecodeDiagram([]byte(sampleDiagram))
	require.NoError(t, err)
	require.Len(t, d.Entities, 2)
	assert.Equal(t, EntityRectangle, d.Entities[0].Type)
	assert.Equal(t, Position{Left: 30, Top: 40}, d.Entities[1].Position)

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, sampleDiagram, string(out))
}

func TestDecodeDiagramInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"not json", "{nope"},
		{"missing connections", `{"entities":[]}`},
		{"missing entities", `{"connections":[]}`},
		{"entities not array", `{"entities":{},"connections":[]}`},
		{"entity without id", `{"entities":[{"type":"rectangle"}],"connections":[]}`},
		{"numeric name", `{"entities":[{"id":"a","name":5}],"connections":[]}`},
		{"fractional position", `{"entities":[{"id":"a","position":{"left":1.5,"top":2}}],"connections":[]}`},
		{"top level array", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeDiagram([]byte(tt.body))
			require.Error(t, err)
			assert.True(t, apperrors.IsInvalidInput(err), "got %v", err)
		})
	}
}

func TestDecodeDiagramFractionalPositionIsSchemaError(t *testing.T) {
	_, err := DecodeDiagram([]byte(`{"entities":[{"id":"a","position":{"left":12.5,"top":2}}],"connections":[]}`))
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "invalid diagram")
	assert.NotContains(t, err.Error(), "Go struct field")
}

func TestDecodeDiagramKeepsUnknownTypes(t *testing.T) {
	d, err := DecodeDiagram([]byte(`{"entities":[{"id":"x","type":"hexagon"}],"connections":[{"source":"x","target":"gone"}]}`))
	require.NoError(t, err)
	assert.Equal(t, EntityType("hexagon"), d.Entities[0].Type)
	assert.Equal(t, "gone", d.Connections[0].Target)
}

func TestEmptyDiagramMarshalsEmptyArrays(t *testing.T) {
	out, err := json.Marshal(&Diagram{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"entities":[],"connections":[]}`, string(out))
}

func TestMoveEntity(t *testing.T) {
	d := &Diagram{Entities: []Entity{{ID: "entity1", Type: EntityEllipse, Name: "email"}}}

	created := d.MoveEntity("entity1", Position{Left: 5, Top: 6})
	assert.False(t, created)
	assert.Equal(t, Position{Left: 5, Top: 6}, d.Entities[0].Position)
	assert.Equal(t, EntityEllipse, d.Entities[0].Type)

	created = d.MoveEntity("entity9", Position{Left: 120, Top: 80})
	assert.True(t, created)
	require.Len(t, d.Entities, 2)
	assert.Equal(t, Entity{ID: "entity9", Type: EntityRectangle, Position: Position{Left: 120, Top: 80}}, d.Entities[1])
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"120px", 120, false},
		{"120", 120, false},
		{" 42px ", 42, false},
		{"12.9px", 12, false},
		{"-3px", -3, false},
		{"", 0, false},
		{"abc", 0, true},
		{"NaN", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseCoordinate(tt.in)
		if tt.wantErr {
			assert.True(t, apperrors.IsInvalidInput(err), "ParseCoordinate(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseCoordinate(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseCoordinate(%q)", tt.in)
	}
}

func TestCoordinateUnmarshal(t *testing.T) {
	var req struct {
		Left Coordinate `json:"left"`
		Top  Coordinate `json:"top"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"left":"120px","top":75}`), &req))
	left, err := req.Left.Int()
	require.NoError(t, err)
	top, err := req.Top.Int()
	require.NoError(t, err)
	assert.Equal(t, 120, left)
	assert.Equal(t, 75, top)
}

func TestNewStorageHandle(t *testing.T) {
	h := NewStorageHandle(time.Date(2026, 10, 18, 9, 5, 3, 0, time.UTC))
	assert.Equal(t, "20261018_090503", h.ID)
}
