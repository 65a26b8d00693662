package clock

// Global handle used by code that cannot thread a *Driver through its call
// path. Registered once during startup by the initializing context.
var defaultDriver *Driver

// SetDefault registers the driver returned by the shared Default handle.
func SetDefault(d *Driver) {
	defaultDriver = d
}

// Default returns the registered driver, or panics if initialization never
// ran. Reading the clock before it exists is a programming error; failing
// loudly beats handing out a silently wrong timestamp.
func Default() *Driver {
	if defaultDriver == nil {
		panic("clock: time driver not initialized")
	}
	return defaultDriver
}

// Now reads the default driver.
func Now() uint64 {
	return Default().Now()
}
