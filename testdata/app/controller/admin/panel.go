package admin

// Panel is the administration panel.
//
// @Middleware [auth, admin]
type Panel struct{}

// Dashboard shows the panel.
//
// @GetMapping "admin/dashboard"
func (p *Panel) Dashboard() {}
