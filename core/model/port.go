package model

// PortID identifies a physical docking port such as "A1".
type PortID string

// String returns the identifier as a plain string.
func (p PortID) String() string { return string(p) }

// Port describes the static attributes of a docking port.
type Port struct {
	ID            PortID
	RefuelCapable bool // whether missions requiring refueling may request this port
	// CanDock lists, in priority order, the ports that may satisfy a request
	// for this port. The port itself is always first.
	CanDock []PortID
}
