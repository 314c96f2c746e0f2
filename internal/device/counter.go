package device

import "sync/atomic"

// Counter is the device-resident match counter shared by all lanes.
// Its value may exceed the capacity of the RecordBuffer it indexes.
type Counter struct {
	v atomic.Uint64
}

// Add increments the counter by one and returns the new value.
func (c *Counter) Add() uint64 { return c.v.Add(1) }

// Load returns the current value.
func (c *Counter) Load() uint64 { return c.v.Load() }

// Reset sets the counter back to zero.
func (c *Counter) Reset() { c.v.Store(0) }
