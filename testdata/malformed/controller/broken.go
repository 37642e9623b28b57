package controller

// Broken has an unterminated group declaration.
//
// @Controller {value: [
// @Middleware [auth]
type Broken struct{}

// Show is still routed.
//
// @GetMapping {value: show,
// @Middleware [csrf]
// @PostMapping "show"
func (b *Broken) Show() {}
