package mocks

import "github.com/ooni/probe-goja/internal/relay"

// Doorbell is a mockable [relay.Doorbell].
type Doorbell struct {
	MockRegister func(resume func()) (relay.Registration, error)
}

var _ relay.Doorbell = &Doorbell{}

// Register calls MockRegister.
func (d *Doorbell) Register(resume func()) (relay.Registration, error) {
	return d.MockRegister(resume)
}

// DoorbellRegistration is a mockable [relay.Registration].
type DoorbellRegistration struct {
	MockSignal func() error
	MockClose  func(onClosed func()) error
}

var _ relay.Registration = &DoorbellRegistration{}

// Signal calls MockSignal.
func (r *DoorbellRegistration) Signal() error {
	return r.MockSignal()
}

// Close calls MockClose.
func (r *DoorbellRegistration) Close(onClosed func()) error {
	return r.MockClose(onClosed)
}
