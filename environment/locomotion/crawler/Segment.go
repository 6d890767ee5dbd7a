package crawler

import (
	"fmt"
	"strings"
)

// Segment names a body part of the crawler
type Segment int

// Segments of the crawler. Body is the core and carries no joint. Every
// leg has an upper segment jointed to the Body and a lower segment
// jointed to the upper segment.
const (
	Body Segment = iota
	Leg0Upper
	Leg0Lower
	Leg1Upper
	Leg1Lower
	Leg2Upper
	Leg2Lower
	Leg3Upper
	Leg3Lower
)

// Segments is the number of body parts of the crawler
const Segments int = 9

// Legs is the number of legs of the crawler
const Legs int = 4

var segmentNames = [Segments]string{
	"Body",
	"Leg0Upper",
	"Leg0Lower",
	"Leg1Upper",
	"Leg1Lower",
	"Leg2Upper",
	"Leg2Lower",
	"Leg3Upper",
	"Leg3Lower",
}

func (s Segment) String() string {
	if s < 0 || int(s) >= Segments {
		return fmt.Sprintf("Segment(%d)", int(s))
	}
	return segmentNames[s]
}

// ParseSegment returns the Segment with the given name. Matching is
// case insensitive.
func ParseSegment(name string) (Segment, error) {
	for i, n := range segmentNames {
		if strings.EqualFold(n, name) {
			return Segment(i), nil
		}
	}
	return 0, fmt.Errorf("parseSegment: no such segment %q", name)
}

// Upper returns the upper segment of leg i
func Upper(leg int) Segment {
	return Segment(1 + 2*leg)
}

// Lower returns the lower segment of leg i
func Lower(leg int) Segment {
	return Segment(2 + 2*leg)
}

// IsUpper returns whether s is the upper segment of a leg
func (s Segment) IsUpper() bool {
	return s > Body && int(s) < Segments && s%2 == 1
}

// IsLower returns whether s is the lower segment of a leg
func (s Segment) IsLower() bool {
	return s > Body && int(s) < Segments && s%2 == 0
}

// MarshalText implements encoding.TextMarshaler
func (s Segment) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= Segments {
		return nil, fmt.Errorf("marshalText: no such segment %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Segment) UnmarshalText(text []byte) error {
	seg, err := ParseSegment(string(text))
	if err != nil {
		return err
	}
	*s = seg
	return nil
}
