package controller

// Health reports liveness.
type Health struct{}

// Check is mounted on the default group.
//
// @GetMapping "health"
func (Health) Check() {}
