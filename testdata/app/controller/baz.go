package controller

// Baz is a REST resource.
//
// @Resource {value: baz, ext: json}
type Baz struct{}

// Index lists baz.
func (b Baz) Index() {}
