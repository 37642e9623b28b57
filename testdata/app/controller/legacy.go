package controller

// Legacy carries annotations that cannot be decoded.
//
// @Controller {value: [}
type Legacy struct{}

// Index keeps its route even though its name is malformed.
//
// @GetMapping {value: "legacy", name: [oops, again]}
// @GetMapping "legacy/ignored"
func (l *Legacy) Index() {}
