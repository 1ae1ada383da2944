package model

type PresenceStatus string

const (
	PresenceOnline PresenceStatus = "online"
	PresenceAway   PresenceStatus = "away"
	PresenceBusy   PresenceStatus = "busy"
)

// Persona is an immutable catalog entry describing one chat character.
// Instances are created at build time and never mutated.
type Persona struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Age         int            `json:"age"`
	Personality string         `json:"personality"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Traits      []string       `json:"traits"`
	Status      PresenceStatus `json:"status"`
}
