// Package inventory persists Cytomat rack/slot occupancy to a YAML file
// (spec.md §4.7, §6.5, component C7), grounded on the original driver's
// save_state/QuotedKeyDumper: slot numbers are serialized as quoted YAML
// string keys ("1", "2", ...) rather than bare integers, because an
// unquoted numeric-looking key that happens to start with a leading zero
// would otherwise round-trip through YAML's octal-literal parsing and
// silently change value. Writes are atomic: a temp file is written and
// renamed over the target so a crash mid-write never corrupts state
// a reader might concurrently load.
package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Slot is one storage location's occupancy.
type Slot struct {
	Occupied bool
	PlateID  string
}

// Rack is one physical rack's full slot layout.
type Rack struct {
	NumSlots int
	Slots    map[int]*Slot
}

// State is the whole instrument's persisted inventory: every rack keyed
// by name.
type State struct {
	Racks map[string]*Rack
}

// NewState returns an empty inventory.
func NewState() *State {
	return &State{Racks: map[string]*Rack{}}
}

// AddRack registers a rack with numSlots empty slots.
func (s *State) AddRack(name string, numSlots int) *Rack {
	r := &Rack{NumSlots: numSlots, Slots: map[int]*Slot{}}
	s.Racks[name] = r
	return r
}

// Occupy records plateID at the given slot (1-indexed) of rack.
func (s *State) Occupy(rack string, slot int, plateID string) error {
	r, ok := s.Racks[rack]
	if !ok {
		return fmt.Errorf("inventory: unknown rack %q", rack)
	}
	if slot < 1 || slot > r.NumSlots {
		return fmt.Errorf("inventory: rack %q slot %d out of range [1,%d]", rack, slot, r.NumSlots)
	}
	r.Slots[slot] = &Slot{Occupied: true, PlateID: plateID}
	return nil
}

// Vacate clears a slot.
func (s *State) Vacate(rack string, slot int) error {
	r, ok := s.Racks[rack]
	if !ok {
		return fmt.Errorf("inventory: unknown rack %q", rack)
	}
	delete(r.Slots, slot)
	return nil
}

// At reports the occupancy of a slot; an unrecorded slot is empty.
func (s *State) At(rack string, slot int) (Slot, error) {
	r, ok := s.Racks[rack]
	if !ok {
		return Slot{}, fmt.Errorf("inventory: unknown rack %q", rack)
	}
	if sl, ok := r.Slots[slot]; ok {
		return *sl, nil
	}
	return Slot{}, nil
}

// toNode builds the YAML document manually so every slot key is emitted
// as an explicitly double-quoted string scalar.
func (s *State) toNode() *yaml.Node {
	root := &yaml.Node{Kind: yaml.MappingNode}

	rackNames := make([]string, 0, len(s.Racks))
	for name := range s.Racks {
		rackNames = append(rackNames, name)
	}
	sort.Strings(rackNames)

	for _, name := range rackNames {
		rack := s.Racks[name]
		rackKey := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name, Style: yaml.DoubleQuotedStyle}

		rackVal := &yaml.Node{Kind: yaml.MappingNode}
		rackVal.Content = append(rackVal.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: "num_slots"},
			&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.Itoa(rack.NumSlots)},
		)

		slotsKey := &yaml.Node{Kind: yaml.ScalarNode, Value: "slots"}
		slotsVal := &yaml.Node{Kind: yaml.MappingNode}

		slotNums := make([]int, 0, len(rack.Slots))
		for n := range rack.Slots {
			slotNums = append(slotNums, n)
		}
		sort.Ints(slotNums)

		for _, n := range slotNums {
			sl := rack.Slots[n]
			slotKey := &yaml.Node{
				Kind:  yaml.ScalarNode,
				Tag:   "!!str",
				Value: strconv.Itoa(n),
				Style: yaml.DoubleQuotedStyle,
			}
			slotVal := &yaml.Node{Kind: yaml.MappingNode}
			slotVal.Content = append(slotVal.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: "occupied"},
				&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatBool(sl.Occupied)},
			)
			if sl.PlateID != "" {
				slotVal.Content = append(slotVal.Content,
					&yaml.Node{Kind: yaml.ScalarNode, Value: "plate_id"},
					&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: sl.PlateID, Style: yaml.DoubleQuotedStyle},
				)
			}
			slotsVal.Content = append(slotsVal.Content, slotKey, slotVal)
		}

		rackVal.Content = append(rackVal.Content, slotsKey, slotsVal)
		root.Content = append(root.Content, rackKey, rackVal)
	}

	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
}

// Save writes the inventory to path atomically: marshal to a sibling
// temp file in the same directory, then rename over path so a reader
// never observes a partially written file.
func (s *State) Save(path string) error {
	doc := s.toNode()
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("inventory: marshal: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".inventory-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("inventory: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("inventory: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("inventory: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("inventory: rename into place: %w", err)
	}
	return nil
}

// rawRack and rawSlot mirror the YAML shape toNode produces, used only to decode
// (yaml.v3 round-trips quoted string keys through map[string]... fine on
// the read side; only writing needs manual node construction).
type rawRack struct {
	NumSlots int                    `yaml:"num_slots"`
	Slots    map[string]rawSlot     `yaml:"slots"`
}

type rawSlot struct {
	Occupied bool   `yaml:"occupied"`
	PlateID  string `yaml:"plate_id"`
}

// Load reads an inventory file written by Save.
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("inventory: read %s: %w", path, err)
	}

	var raw map[string]rawRack
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("inventory: parse %s: %w", path, err)
	}

	s := NewState()
	for name, rr := range raw {
		rack := s.AddRack(name, rr.NumSlots)
		for slotStr, rs := range rr.Slots {
			n, err := strconv.Atoi(slotStr)
			if err != nil {
				return nil, fmt.Errorf("inventory: rack %q: bad slot key %q: %w", name, slotStr, err)
			}
			rack.Slots[n] = &Slot{Occupied: rs.Occupied, PlateID: rs.PlateID}
		}
	}
	return s, nil
}
