package monitor

import "time"

// Status reports reachability of the service's two external legs: the
// hosted identity provider and the session slot backend.
type Status struct {
	Provider  bool      `json:"provider"`
	Slot      bool      `json:"slot"`
	LastCheck time.Time `json:"last_check"`
}
