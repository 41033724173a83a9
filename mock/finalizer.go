package mock

import "runtime"

// runtimeSetFinalizer registers an advisory finalizer that warns if a
// Driver is garbage-collected while still holding the simulated hardware
// lock. Go has no equivalent of Rust's Drop for correctness-critical
// cleanup — finalizer timing is not guaranteed and must never be relied
// upon to release the lock promptly — so this exists purely to surface a
// caller bug (a Driver built and initialized but never Shutdown) in logs,
// not as a safety net (SPEC_FULL.md §4.7).
func runtimeSetFinalizer(d *Driver) {
	runtime.SetFinalizer(d, func(d *Driver) {
		d.mu.Lock()
		initialized := d.initialized
		d.mu.Unlock()
		if initialized {
			finalizerLog.Warnf("driver for sensor %q collected without Shutdown being called", d.cfg.SensorID)
		}
	})
}
