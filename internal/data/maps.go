package data

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"
)

// Game config defaults, applied when the JSON omits the key.
const (
	DefaultDogSpeed          = 1.0
	DefaultBagCapacity       = 3
	DefaultDogRetirementTime = 60.0
)

// Road is an axis-aligned segment with normalized endpoints
// (MinX <= MaxX, MinY <= MaxY). Horizontal roads have MinY == MaxY.
type Road struct {
	MinX, MinY float64
	MaxX, MaxY float64
	Horizontal bool
}

// Contains reports whether p lies inside the road rectangle inflated by
// width on all sides.
func (r Road) Contains(x, y, width float64) bool {
	return r.MinX-width <= x && x <= r.MaxX+width &&
		r.MinY-width <= y && y <= r.MaxY+width
}

// Office is a deposit point. Offsets are visual only.
type Office struct {
	ID      string
	X, Y    float64
	OffsetX int
	OffsetY int
}

// Map is an immutable parsed map. Raw keeps the original JSON object so the
// maps endpoint can return the config verbatim, unmodeled keys included.
type Map struct {
	ID          string
	Name        string
	DogSpeed    float64
	BagCapacity int
	Roads       []Road
	Offices     []Office
	LootScores  []int // score per loot type index
	Raw         json.RawMessage
}

// LootTypeCount returns the number of configured loot types.
func (m *Map) LootTypeCount() int {
	return len(m.LootScores)
}

// ScoreOf returns the score awarded for picking up loot of the given type.
func (m *Map) ScoreOf(lootType int) int {
	return m.LootScores[lootType]
}

// MapTable is the immutable map catalog.
type MapTable struct {
	maps []*Map
	byID map[string]*Map
}

// Find returns the map with the given id, or nil.
func (t *MapTable) Find(id string) *Map {
	return t.byID[id]
}

// All returns maps in config order.
func (t *MapTable) All() []*Map {
	return t.maps
}

// Count returns the number of maps in the catalog.
func (t *MapTable) Count() int {
	return len(t.maps)
}

// GameData is everything loaded from the game config file.
type GameData struct {
	Maps              *MapTable
	LootPeriod        time.Duration
	LootProbability   float64
	DogRetirementTime float64 // seconds
}

type gameConfigFile struct {
	DefaultDogSpeed    *float64          `json:"defaultDogSpeed"`
	DefaultBagCapacity *int              `json:"defaultBagCapacity"`
	DogRetirementTime  *float64          `json:"dogRetirementTime"`
	LootGenerator      lootGeneratorJSON `json:"lootGeneratorConfig"`
	Maps               []json.RawMessage `json:"maps"`
}

type lootGeneratorJSON struct {
	Period      float64 `json:"period"`
	Probability float64 `json:"probability"`
}

type mapJSON struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	DogSpeed    *float64       `json:"dogSpeed"`
	BagCapacity *int           `json:"bagCapacity"`
	Roads       []roadJSON     `json:"roads"`
	Offices     []officeJSON   `json:"offices"`
	LootTypes   []lootTypeJSON `json:"lootTypes"`
}

type roadJSON struct {
	X0 int  `json:"x0"`
	Y0 int  `json:"y0"`
	X1 *int `json:"x1"`
	Y1 *int `json:"y1"`
}

type officeJSON struct {
	ID      string `json:"id"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	OffsetX int    `json:"offsetX"`
	OffsetY int    `json:"offsetY"`
}

type lootTypeJSON struct {
	Value int `json:"value"`
}

// LoadGameData parses the game config JSON (§6.1 layout) into an immutable
// catalog. Per-map dogSpeed/bagCapacity override the top-level defaults.
func LoadGameData(path string) (*GameData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game config %s: %w", path, err)
	}
	return ParseGameData(raw)
}

// ParseGameData builds a GameData from raw config JSON.
func ParseGameData(raw []byte) (*GameData, error) {
	var file gameConfigFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse game config: %w", err)
	}
	if file.LootGenerator.Period <= 0 {
		return nil, fmt.Errorf("lootGeneratorConfig.period must be positive")
	}

	defSpeed := DefaultDogSpeed
	if file.DefaultDogSpeed != nil {
		defSpeed = *file.DefaultDogSpeed
	}
	defCapacity := DefaultBagCapacity
	if file.DefaultBagCapacity != nil {
		defCapacity = *file.DefaultBagCapacity
	}
	retirement := DefaultDogRetirementTime
	if file.DogRetirementTime != nil {
		retirement = *file.DogRetirementTime
	}

	table := &MapTable{byID: make(map[string]*Map, len(file.Maps))}
	for _, rawMap := range file.Maps {
		m, err := parseMap(rawMap, defSpeed, defCapacity)
		if err != nil {
			return nil, err
		}
		if _, exists := table.byID[m.ID]; exists {
			return nil, fmt.Errorf("duplicate map id %q", m.ID)
		}
		table.maps = append(table.maps, m)
		table.byID[m.ID] = m
	}

	return &GameData{
		Maps:              table,
		LootPeriod:        time.Duration(file.LootGenerator.Period * float64(time.Second)),
		LootProbability:   file.LootGenerator.Probability,
		DogRetirementTime: retirement,
	}, nil
}

func parseMap(raw json.RawMessage, defSpeed float64, defCapacity int) (*Map, error) {
	var mj mapJSON
	if err := json.Unmarshal(raw, &mj); err != nil {
		return nil, fmt.Errorf("parse map: %w", err)
	}
	if mj.ID == "" {
		return nil, fmt.Errorf("map without id")
	}
	if len(mj.Roads) == 0 {
		return nil, fmt.Errorf("map %s: no roads", mj.ID)
	}

	m := &Map{
		ID:          mj.ID,
		Name:        mj.Name,
		DogSpeed:    defSpeed,
		BagCapacity: defCapacity,
		Raw:         raw,
	}
	if mj.DogSpeed != nil {
		m.DogSpeed = *mj.DogSpeed
	}
	if mj.BagCapacity != nil {
		m.BagCapacity = *mj.BagCapacity
	}

	for i, rj := range mj.Roads {
		road, err := parseRoad(rj)
		if err != nil {
			return nil, fmt.Errorf("map %s: road %d: %w", mj.ID, i, err)
		}
		m.Roads = append(m.Roads, road)
	}
	// Sort so the clamp result does not depend on config order.
	sort.Slice(m.Roads, func(i, j int) bool {
		a, b := m.Roads[i], m.Roads[j]
		if a.MinX != b.MinX {
			return a.MinX < b.MinX
		}
		if a.MinY != b.MinY {
			return a.MinY < b.MinY
		}
		return !a.Horizontal && b.Horizontal
	})

	for _, oj := range mj.Offices {
		m.Offices = append(m.Offices, Office{
			ID:      oj.ID,
			X:       float64(oj.X),
			Y:       float64(oj.Y),
			OffsetX: oj.OffsetX,
			OffsetY: oj.OffsetY,
		})
	}

	for _, lt := range mj.LootTypes {
		m.LootScores = append(m.LootScores, lt.Value)
	}

	return m, nil
}

func parseRoad(rj roadJSON) (Road, error) {
	if (rj.X1 == nil) == (rj.Y1 == nil) {
		return Road{}, fmt.Errorf("exactly one of x1, y1 must be present")
	}
	x0, y0 := float64(rj.X0), float64(rj.Y0)
	if rj.X1 != nil {
		x1 := float64(*rj.X1)
		return Road{
			MinX: min(x0, x1), MaxX: max(x0, x1),
			MinY: y0, MaxY: y0,
			Horizontal: true,
		}, nil
	}
	y1 := float64(*rj.Y1)
	return Road{
		MinX: x0, MaxX: x0,
		MinY: min(y0, y1), MaxY: max(y0, y1),
	}, nil
}
