package table

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiercbk/annoroute/decl"
	routeErrors "github.com/javiercbk/annoroute/errors"
)

func TestValidatePath(t *testing.T) {
	tests := []struct {
		path  string
		valid bool
	}{
		{"", true},
		{"foo/bar/:id", true},
		{"/foo/bar/", true},
		{"blog-<id>/<page>", true},
		{"files/*", true},
		{"*", true},
		{"foo bar", false},
		{"foo//bar", false},
		{"foo/:", false},
		{"foo/<>", false},
		{"foo/<id", false},
		{"foo/id>", false},
		{"foo/*/bar", false},
		{"foo/a*", false},
		{"foo/a:id", false},
		{"foo/[:id]", false},
		{"foo/:1d", false},
	}
	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			err := ValidatePath(test.path)
			if test.valid {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, routeErrors.ErrInvalidPath, err)
			}
		})
	}
}

func TestRewrite(t *testing.T) {
	braces := func(name string) string { return "{" + name + "}" }
	tests := []struct {
		path   string
		expect string
		vars   []string
	}{
		{"foo/bar", "foo/bar", []string{}},
		{"foo/:id", "foo/{id}", []string{"id"}},
		{"blog-<id>/<page>/x", "blog-{id}/{page}/x", []string{"id", "page"}},
		{"a/:x/<y>z", "a/{x}/{y}z", []string{"x", "y"}},
		{"", "", []string{}},
	}
	for _, test := range tests {
		t.Run(test.path, func(t *testing.T) {
			assert.Equal(t, test.expect, Rewrite(test.path, braces))
			assert.Equal(t, test.vars, Variables(test.path))
		})
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "foo/bar", Join("foo", "bar"))
	assert.Equal(t, "foo", Join("/foo/", ""))
	assert.Equal(t, "bar", Join("", "/bar"))
	assert.Equal(t, "", Join("", ""))
}

func TestGroupNesting(t *testing.T) {
	tb := New()
	var inner string
	outer, err := tb.Group("api", func() error {
		g, err := tb.Group("v1", func() error {
			_, err := tb.CurrentGroup().AddRule("ping", "Ping@Index", decl.Get)
			return err
		})
		if err != nil {
			return err
		}
		g.Middleware([]string{"v1"})
		g.Option(decl.Options{"ext": "json"})
		inner = "done"
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, "done", inner)
	outer.Middleware([]string{"api"})
	outer.Option(decl.Options{"ext": "xml", "https": true})

	rule, err := tb.CurrentGroup().AddRule("health", "Health@Check", decl.Get)
	require.NoError(t, err)
	rule.Middleware([]string{"log"})

	rules := tb.Rules()
	require.Len(t, rules, 2)
	assert.Equal(t, "api/v1/ping", rules[0].FullPath)
	assert.Equal(t, "ping", rules[0].Path)
	assert.Equal(t, []string{"api", "v1"}, rules[0].Middleware)
	assert.Equal(t, decl.Options{"ext": "json", "https": true}, rules[0].Options)
	assert.Equal(t, "health", rules[1].FullPath)
	assert.Equal(t, []string{"log"}, rules[1].Middleware)

	entries := tb.Root().Entries()
	require.Len(t, entries, 2)
	require.NotNil(t, entries[0].Group)
	assert.Equal(t, "api", entries[0].Group.Path)
	require.NotNil(t, entries[1].Rule)
	assert.Equal(t, "health", entries[1].Rule.Path)
}

func TestGroupCallbackError(t *testing.T) {
	tb := New()
	boom := errors.New("boom")
	_, err := tb.Group("foo", func() error { return boom })
	assert.Equal(t, boom, err)
	_, err = tb.CurrentGroup().AddRule("bar", "Bar@Index", decl.Get)
	require.NoError(t, err)
	assert.Equal(t, "bar", tb.Rules()[0].FullPath)
}

func TestResource(t *testing.T) {
	tb := New()
	_, err := tb.Group("", func() error {
		res, err := tb.Resource("baz", "app.Baz")
		if err != nil {
			return err
		}
		res.Option(decl.Options{"ext": "json"})
		return nil
	})
	require.NoError(t, err)

	expect := []struct {
		verb   decl.Verb
		path   string
		target string
	}{
		{decl.Get, "baz", "app.Baz@index"},
		{decl.Get, "baz/create", "app.Baz@create"},
		{decl.Post, "baz", "app.Baz@save"},
		{decl.Get, "baz/:id", "app.Baz@read"},
		{decl.Get, "baz/:id/edit", "app.Baz@edit"},
		{decl.Put, "baz/:id", "app.Baz@update"},
		{decl.Delete, "baz/:id", "app.Baz@delete"},
	}
	rules := tb.Rules()
	require.Len(t, rules, len(expect))
	for i, e := range expect {
		assert.Equal(t, e.verb, rules[i].Verb)
		assert.Equal(t, e.path, rules[i].FullPath)
		assert.Equal(t, e.target, rules[i].Target)
		assert.Equal(t, decl.Options{"ext": "json"}, rules[i].Options)
		assert.Empty(t, rules[i].Name)
	}

	_, err = tb.Resource("", "app.Empty")
	var configErr *routeErrors.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.Equal(t, routeErrors.ErrInvalidPath, configErr.Err)
}

func TestAddRuleErrors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		verb   decl.Verb
		expect error
	}{
		{name: "invalid verb", path: "a", verb: decl.Verb("fetch"), expect: routeErrors.ErrInvalidVerb},
		{name: "invalid path", path: "a b", verb: decl.Get, expect: routeErrors.ErrInvalidPath},
		{name: "duplicate route", path: "taken", verb: decl.Get, expect: routeErrors.ErrDuplicateRoute},
		{name: "any does not collide with get", path: "taken", verb: decl.Any},
		{name: "post does not collide with get", path: "taken", verb: decl.Post},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tb := New()
			_, err := tb.CurrentGroup().AddRule("taken", "app.Foo@Bar", decl.Get)
			require.NoError(t, err)
			_, err = tb.CurrentGroup().AddRule(test.path, "app.Foo@Baz", test.verb)
			if test.expect == nil {
				assert.NoError(t, err)
				return
			}
			var configErr *routeErrors.ConfigurationError
			require.True(t, errors.As(err, &configErr))
			assert.Equal(t, "app.Foo", configErr.Class)
			assert.Equal(t, "Baz", configErr.Method)
			assert.True(t, errors.Is(err, test.expect))
		})
	}
}

func TestWildcardGroup(t *testing.T) {
	tb := New()
	g, err := tb.Group("files/*", nil)
	require.NoError(t, err)
	_, err = g.AddRule("", "app.Files@Serve", decl.Get)
	require.NoError(t, err)
	_, err = g.AddRule("more", "app.Files@More", decl.Get)
	assert.True(t, errors.Is(err, routeErrors.ErrInvalidPath))
}

func TestRuleDetails(t *testing.T) {
	tb := New()
	g, err := tb.Group("users", nil)
	require.NoError(t, err)
	rule, err := g.AddRule("edit/:id", "app.User@Edit", decl.Put)
	require.NoError(t, err)
	require.NoError(t, rule.Name("users.edit"))
	rule.Option(decl.Options{"https": true})
	rule.Model("id", "app.User", true)
	rule.Model("owner", "app.Owner", false)
	rule.Validate("app.UserValidator", "edit", map[string]string{"name.require": "required"}, true)
	rule.Group("admin")

	named, ok := tb.Named("users.edit")
	require.True(t, ok)
	assert.Equal(t, "users/edit/:id", named.FullPath)
	assert.Equal(t, []decl.ModelBinding{
		{Var: "id", Model: "app.User", Exception: true},
		{Var: "owner", Model: "app.Owner", Exception: false},
	}, named.Models)
	assert.Equal(t, &decl.Validation{
		Validator: "app.UserValidator",
		Scene:     "edit",
		Messages:  map[string]string{"name.require": "required"},
		Batch:     true,
	}, named.Validation)
	assert.Equal(t, "admin", named.GroupAlias)

	looked, ok := tb.Lookup(decl.Put, "/users/edit/:id")
	require.True(t, ok)
	assert.Equal(t, "users.edit", looked.Name)
	_, ok = tb.Lookup(decl.Get, "users/edit/:id")
	assert.False(t, ok)

	other, err := g.AddRule("other", "app.User@Other", decl.Get)
	require.NoError(t, err)
	err = other.Name("users.edit")
	assert.True(t, errors.Is(err, routeErrors.ErrDuplicateName))
	require.NoError(t, rule.Name("users.update"))
	_, ok = tb.Named("users.edit")
	assert.False(t, ok)
	require.NoError(t, other.Name("users.edit"))
}
