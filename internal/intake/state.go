package intake

import "fmt"

// State is the intake step pointer.
type State int

const (
	Inactive State = iota
	AwaitingName
	AwaitingAge
	AwaitingPhone
	AwaitingLocation
	Complete
)

var stateNames = map[State]string{
	Inactive:         "inactive",
	AwaitingName:     "awaiting-name",
	AwaitingAge:      "awaiting-age",
	AwaitingPhone:    "awaiting-phone",
	AwaitingLocation: "awaiting-location",
	Complete:         "complete",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Collecting reports whether answers are still routed to the intake machine.
func (s State) Collecting() bool {
	return s >= AwaitingName && s <= AwaitingLocation
}

func (s State) MarshalText() ([]byte, error) {
	name, ok := stateNames[s]
	if !ok {
		return nil, fmt.Errorf("unknown intake state %d", int(s))
	}
	return []byte(name), nil
}

func (s *State) UnmarshalText(text []byte) error {
	for state, name := range stateNames {
		if name == string(text) {
			*s = state
			return nil
		}
	}
	return fmt.Errorf("unknown intake state %q", text)
}

// Profile holds the patient details collected during intake.
type Profile struct {
	Name     string `json:"name"`
	Age      string `json:"age"`
	Phone    string `json:"phone"`
	Location string `json:"location,omitempty"`
}

// Complete reports whether every required field is set. Location is optional.
func (p Profile) Complete() bool {
	return p.Name != "" && p.Age != "" && p.Phone != ""
}
