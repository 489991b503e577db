package types

import "fmt"

// Zone is a circular target region
type Zone struct {
	ID      int
	CenterX float64
	CenterY float64
	Radius  float64
}

// Box is an axis-aligned bounding box with inclusive edges
type Box struct {
	MinX, MaxX float64
	MinY, MaxY float64
}

// Contains reports whether (x, y) lies inside the box, edges included
func (b Box) Contains(x, y float64) bool {
	return x >= b.MinX && x <= b.MaxX && y >= b.MinY && y <= b.MaxY
}

// Bounds returns the square box enclosing the zone's circle
func (z Zone) Bounds() Box {
	return Box{
		MinX: z.CenterX - z.Radius,
		MaxX: z.CenterX + z.Radius,
		MinY: z.CenterY - z.Radius,
		MaxY: z.CenterY + z.Radius,
	}
}

// ZoneSet is an ordered, immutable sequence of zones. Earlier zones take
// precedence when their boxes overlap. Boxes are computed once in NewZoneSet.
type ZoneSet struct {
	zones []Zone
	boxes []Box
}

// NewZoneSet validates zones and precomputes their bounding boxes
func NewZoneSet(zones []Zone) (ZoneSet, error) {
	if len(zones) == 0 {
		return ZoneSet{}, fmt.Errorf("%w: empty zone set", ErrInvalidZone)
	}

	seen := make(map[int]bool, len(zones))
	s := ZoneSet{
		zones: make([]Zone, len(zones)),
		boxes: make([]Box, len(zones)),
	}
	for i, z := range zones {
		if z.Radius <= 0 {
			return ZoneSet{}, fmt.Errorf("%w: zone %d radius %v", ErrInvalidZone, z.ID, z.Radius)
		}
		if z.ID < 0 {
			return ZoneSet{}, fmt.Errorf("%w: zone id %d is negative", ErrInvalidZone, z.ID)
		}
		if seen[z.ID] {
			return ZoneSet{}, fmt.Errorf("%w: duplicate zone id %d", ErrInvalidZone, z.ID)
		}
		seen[z.ID] = true
		s.zones[i] = z
		s.boxes[i] = z.Bounds()
	}
	return s, nil
}

// Len returns the number of zones
func (s ZoneSet) Len() int { return len(s.zones) }

// Zone returns the i-th zone in precedence order
func (s ZoneSet) Zone(i int) Zone { return s.zones[i] }

// Box returns the bounding box of the i-th zone
func (s ZoneSet) Box(i int) Box { return s.boxes[i] }

// Zones returns a copy of the zones in precedence order
func (s ZoneSet) Zones() []Zone {
	out := make([]Zone, len(s.zones))
	copy(out, s.zones)
	return out
}

// DefaultZones returns the four drum pads of the reference deployment
func DefaultZones() []Zone {
	return []Zone{
		{ID: 0, CenterX: 677, CenterY: 180, Radius: 54},
		{ID: 1, CenterX: 526, CenterY: 170, Radius: 72},
		{ID: 2, CenterX: 610, CenterY: 306, Radius: 84},
		{ID: 3, CenterX: 380, CenterY: 260, Radius: 92},
	}
}
