package transport

// Probe reports environment conditions that change how request failures
// surface. It stands in for the host application's lifecycle signals: a
// hidden host suppresses user-facing notifications, a closing host rejects
// new requests outright.
type Probe interface {
	// Hidden reports whether the host application is backgrounded and
	// notifications would go unseen
	Hidden() bool

	// Closing reports whether the host application is shutting down and
	// in-flight work should be abandoned silently
	Closing() bool
}

// NopProbe is a Probe for hosts with no lifecycle signals: never hidden,
// never closing.
type NopProbe struct{}

func (NopProbe) Hidden() bool  { return false }
func (NopProbe) Closing() bool { return false }

var _ Probe = NopProbe{}
