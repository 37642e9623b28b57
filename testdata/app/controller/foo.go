package controller

// Foo serves foo pages.
//
// @Controller "foo"
type Foo struct{}

// Bar shows a single foo.
//
// @GetMapping {value: "bar/:id", name: foo.bar}
// @Model {var: id, value: example.com/app/model.Foo}
// @Model {var: owner, value: example.com/app/model.User, exception: false}
func (f *Foo) Bar() {}

// helper is not public.
//
// @GetMapping "hidden"
func (f *Foo) helper() {}
