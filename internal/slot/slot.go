package slot

import (
	"fmt"
	"time"
)

// Slot is one of the three daily check-in windows.
type Slot string

const (
	Morning Slot = "morning"
	Noon    Slot = "noon"
	Evening Slot = "evening"
)

// All returns the slots in daily order.
func All() []Slot {
	return []Slot{Morning, Noon, Evening}
}

// Valid reports whether s is one of the known slots.
func (s Slot) Valid() bool {
	switch s {
	case Morning, Noon, Evening:
		return true
	}
	return false
}

func (s Slot) String() string { return string(s) }

// Parse converts a tag or query value into a Slot.
func Parse(v string) (Slot, error) {
	s := Slot(v)
	if !s.Valid() {
		return "", fmt.Errorf("unknown slot %q", v)
	}
	return s, nil
}

// Hours maps each slot to the local hour its trigger fires at.
type Hours map[Slot]int

// DefaultHours are the trigger hours used when no profile overrides them.
func DefaultHours() Hours {
	return Hours{Morning: 7, Noon: 13, Evening: 21}
}

// Resolve returns the slot whose trigger hour matches the local hour of now in loc.
// ok is false when the hour matches no slot; callers apply their own default.
func Resolve(now time.Time, loc *time.Location, hours Hours) (Slot, bool) {
	if loc == nil {
		loc = time.UTC
	}
	hour := now.In(loc).Hour()
	for _, s := range All() {
		if h, found := hours[s]; found && h == hour {
			return s, true
		}
	}
	return "", false
}
