package main

// Point is a contact position in screen pixels.
type Point struct {
	X uint16 `json:"x"`
	Y uint16 `json:"y"`
}

// ContactSet holds one Point per contact slot, indexed by slot.
type ContactSet [MaxContacts]Point

// Displacement is a signed per-axis travel in pixels (last - start).
type Displacement struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

func (p Point) sub(start Point) Displacement {
	return Displacement{
		DX: int(p.X) - int(start.X),
		DY: int(p.Y) - int(start.Y),
	}
}

// touchTracker records one touch-down-to-lift cycle.
//
//   - start is written once per touch-down and left alone until the next one
//     (timer abandonment does not clear it).
//   - last is overwritten on every held poll and once more at lift.
//   - distance is only meaningful between lift detection and dispatch;
//     it reads as zero at all other times.
type touchTracker struct {
	start    ContactSet
	last     ContactSet
	distance [MaxContacts]Displacement
}

// measure computes distances at lift. Slot 1 is only populated for
// two-contact gestures.
func (t *touchTracker) measure(contacts int) {
	t.distance[0] = t.last[0].sub(t.start[0])
	if contacts == 2 {
		t.distance[1] = t.last[1].sub(t.start[1])
	} else {
		t.distance[1] = Displacement{}
	}
}

func (t *touchTracker) clearDistance() {
	t.distance = [MaxContacts]Displacement{}
}
