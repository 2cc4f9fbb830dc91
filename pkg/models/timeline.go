package models

// ComponentWindow is the derived start/end window for one component type.
// Absent dates render as null.
type ComponentWindow struct {
	Start *Date `json:"start"`
	End   *Date `json:"end"`
}

// TimelineResponse is the read-side view over a contract's component states.
// Component types with no state row yet are omitted from the map.
type TimelineResponse struct {
	ContractNumber string                     `json:"contract_number"`
	Components     map[string]ComponentWindow `json:"components"`
}
