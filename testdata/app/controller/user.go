package controller

// User manages accounts.
//
// @Controller {value: users, options: {https: true}}
// @Middleware [auth]
type User struct{}

// Edit renders and stores the edit form.
//
// @GetMapping "edit/:id"
// @PutMapping "edit/:id"
// @Middleware [csrf]
// @Validate {value: example.com/app/validate.User, scene: edit,
// message: {name.require: "name required"}}
func (u *User) Edit() {}

// Ping answers on any verb.
//
// @Route "ping"
// @RequestMapping {value: "ping", method: patch, name: users.ping}
// @Group admin
func (u *User) Ping() {}
