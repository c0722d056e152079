package domain

// ClassificationTag tells the merge which side of an address survives.
type ClassificationTag uint8

const (
	// General accounts carry ordinary network state and are imported from the source.
	General ClassificationTag = iota
	// ValidatorIdentity accounts describe who validates the network: vote and
	// stake accounts plus anything the target ledger explicitly preserves.
	ValidatorIdentity
)

// String implements fmt.Stringer.
func (t ClassificationTag) String() string {
	switch t {
	case General:
		return "General"
	case ValidatorIdentity:
		return "ValidatorIdentity"
	default:
		return "Unknown"
	}
}
