package annoroute_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiercbk/annoroute"
	"github.com/javiercbk/annoroute/config"
	"github.com/javiercbk/annoroute/decl"
	routeErrors "github.com/javiercbk/annoroute/errors"
	"github.com/javiercbk/annoroute/source"
	"github.com/javiercbk/annoroute/table"
)

const (
	appDir     = "testdata/app"
	controller = "example.com/app/controller"
)

func discard() *log.Logger {
	return log.New(io.Discard)
}

func newLoader(t *testing.T, c config.Config) annoroute.Loader {
	logger := discard()
	loader, err := annoroute.NewLoader(c, source.NewGoSource(logger), logger)
	require.NoError(t, err)
	return loader
}

func appConfig(extra ...string) config.Config {
	c := config.Default()
	c.AppPath = appDir
	c.Annotation.Route.Controllers = extra
	return c
}

func TestRead(t *testing.T) {
	logger := discard()
	reader := annoroute.Reader{Source: source.NewGoSource(logger), Logger: logger}
	controllers, err := reader.Read(filepath.Join(appDir, "controller"))
	require.NoError(t, err)

	byClass := make(map[string]decl.Controller)
	for _, c := range controllers {
		byClass[c.Class] = c
	}
	require.Len(t, byClass, 7)

	foo := byClass[controller+".Foo"]
	require.NotNil(t, foo.Group)
	assert.Equal(t, "foo", foo.Group.Path)
	assert.False(t, foo.HasMiddleware)
	require.Len(t, foo.Methods, 1)
	assert.Equal(t, []decl.Route{{
		Kind: decl.KindGetMapping, Path: "bar/:id", Verb: decl.Get, Name: "foo.bar", Options: decl.Options{},
	}}, foo.Methods[0].Routes)
	assert.Equal(t, []decl.ModelBinding{
		{Var: "id", Model: "example.com/app/model.Foo", Exception: true},
		{Var: "owner", Model: "example.com/app/model.User", Exception: false},
	}, foo.Methods[0].Models)

	baz := byClass[controller+".Baz"]
	assert.Nil(t, baz.Group)
	require.NotNil(t, baz.Resource)
	assert.Equal(t, decl.Resource{Path: "baz", Options: decl.Options{"ext": "json"}}, *baz.Resource)

	article := byClass[controller+".Article"]
	require.NotNil(t, article.Group)
	assert.Equal(t, decl.Group{Path: "api", Options: decl.Options{"version": 2}}, *article.Group)
	require.NotNil(t, article.Resource)
	assert.Equal(t, decl.Resource{Path: "articles", Options: decl.Options{"ext": "json"}}, *article.Resource)
	require.Len(t, article.Methods, 1)
	assert.Equal(t, []decl.Route{{
		Kind: decl.KindGetMapping, Path: "articles/feed", Verb: decl.Get, Name: "articles.feed", Options: decl.Options{},
	}}, article.Methods[0].Routes)

	user := byClass[controller+".User"]
	require.NotNil(t, user.Group)
	assert.Equal(t, decl.Group{Path: "users", Options: decl.Options{"https": true}}, *user.Group)
	assert.True(t, user.HasMiddleware)
	assert.Equal(t, []string{"auth"}, user.Middleware)
	require.Len(t, user.Methods, 2)
	edit := user.Methods[0]
	assert.Equal(t, "Edit", edit.Name)
	require.Len(t, edit.Routes, 2)
	assert.Equal(t, decl.Get, edit.Routes[0].Verb)
	assert.Equal(t, decl.Put, edit.Routes[1].Verb)
	assert.Equal(t, []string{"csrf"}, edit.Middleware)
	assert.Equal(t, &decl.Validation{
		Validator: "example.com/app/validate.User",
		Scene:     "edit",
		Messages:  map[string]string{"name.require": "name required"},
		Batch:     true,
	}, edit.Validation)
	ping := user.Methods[1]
	require.Len(t, ping.Routes, 2)
	assert.Equal(t, decl.KindRoute, ping.Routes[0].Kind)
	assert.Equal(t, decl.Any, ping.Routes[0].Verb)
	assert.Equal(t, decl.KindRequestMapping, ping.Routes[1].Kind)
	assert.Equal(t, decl.Patch, ping.Routes[1].Verb)
	assert.Equal(t, "users.ping", ping.Routes[1].Name)
	assert.True(t, ping.HasGroupAlias)
	assert.Equal(t, "admin", ping.GroupAlias)

	legacy := byClass[controller+".Legacy"]
	assert.Nil(t, legacy.Group)
	require.Len(t, legacy.Methods, 1)
	assert.Equal(t, []decl.Route{{
		Kind: decl.KindGetMapping, Path: "legacy", Verb: decl.Get, Options: decl.Options{},
	}}, legacy.Methods[0].Routes)

	health := byClass[controller+".Health"]
	assert.Nil(t, health.Group)
	assert.Nil(t, health.Resource)
	assert.False(t, health.HasMiddleware)

	panel := byClass[controller+"/admin.Panel"]
	assert.True(t, panel.HasMiddleware)
	assert.Equal(t, []string{"auth", "admin"}, panel.Middleware)
}

func TestLoad(t *testing.T) {
	tb := table.New()
	loader := newLoader(t, appConfig(filepath.Join(appDir, "missing")))
	require.NoError(t, loader.Load(tb))
	assert.Equal(t, 23, tb.Len())

	bar, ok := tb.Named("foo.bar")
	require.True(t, ok)
	assert.Equal(t, decl.Get, bar.Verb)
	assert.Equal(t, "foo/bar/:id", bar.FullPath)
	assert.Equal(t, controller+".Foo@Bar", bar.Target)
	assert.Len(t, bar.Models, 2)

	for _, verb := range []decl.Verb{decl.Get, decl.Put} {
		edit, ok := tb.Lookup(verb, "users/edit/:id")
		require.True(t, ok, string(verb))
		assert.Equal(t, controller+".User@Edit", edit.Target)
		assert.Equal(t, []string{"auth", "csrf"}, edit.Middleware)
		assert.Equal(t, decl.Options{"https": true}, edit.Options)
	}

	anyVerb, ok := tb.Lookup(decl.Any, "users/ping")
	require.True(t, ok)
	patch, ok := tb.Lookup(decl.Patch, "users/ping")
	require.True(t, ok)
	assert.Equal(t, anyVerb.Target, patch.Target)
	assert.Equal(t, "admin", anyVerb.GroupAlias)

	read, ok := tb.Lookup(decl.Get, "baz/:id")
	require.True(t, ok)
	assert.Equal(t, controller+".Baz@read", read.Target)
	assert.Equal(t, decl.Options{"ext": "json"}, read.Options)

	health, ok := tb.Lookup(decl.Get, "health")
	require.True(t, ok)
	assert.Empty(t, health.Middleware)

	dashboard, ok := tb.Lookup(decl.Get, "admin/dashboard")
	require.True(t, ok)
	assert.Equal(t, []string{"auth", "admin"}, dashboard.Middleware)

	_, ok = tb.Lookup(decl.Get, "legacy/ignored")
	assert.False(t, ok)
	_, ok = tb.Lookup(decl.Get, "foo/hidden")
	assert.False(t, ok)
}

func TestLoadResourceAndRoutesShareGroup(t *testing.T) {
	tb := table.New()
	require.NoError(t, newLoader(t, appConfig()).Load(tb))

	crud := []struct {
		verb     decl.Verb
		fullPath string
		action   string
	}{
		{verb: decl.Get, fullPath: "api/articles", action: "index"},
		{verb: decl.Get, fullPath: "api/articles/create", action: "create"},
		{verb: decl.Post, fullPath: "api/articles", action: "save"},
		{verb: decl.Get, fullPath: "api/articles/:id", action: "read"},
		{verb: decl.Get, fullPath: "api/articles/:id/edit", action: "edit"},
		{verb: decl.Put, fullPath: "api/articles/:id", action: "update"},
		{verb: decl.Delete, fullPath: "api/articles/:id", action: "delete"},
	}
	for _, c := range crud {
		rule, ok := tb.Lookup(c.verb, c.fullPath)
		require.True(t, ok, c.fullPath)
		assert.Equal(t, controller+".Article@"+c.action, rule.Target)
		assert.Equal(t, decl.Options{"version": 2, "ext": "json"}, rule.Options)
	}

	feed, ok := tb.Named("articles.feed")
	require.True(t, ok)
	assert.Equal(t, "api/articles/feed", feed.FullPath)
	assert.Equal(t, controller+".Article@Feed", feed.Target)
	assert.Equal(t, decl.Options{"version": 2}, feed.Options)

	var group *table.Group
	for _, e := range tb.Root().Entries() {
		if e.Group != nil && e.Group.Path == "api" {
			group = e.Group
		}
	}
	require.NotNil(t, group)
	assert.Len(t, group.Entries(), 8)
}

func TestReadMalformedAnnotation(t *testing.T) {
	logger := discard()
	reader := annoroute.Reader{Source: source.NewGoSource(logger), Logger: logger}
	controllers, err := reader.Read("testdata/malformed/controller")
	require.NoError(t, err)
	require.Len(t, controllers, 1)

	broken := controllers[0]
	assert.Nil(t, broken.Group)
	assert.True(t, broken.HasMiddleware)
	assert.Equal(t, []string{"auth"}, broken.Middleware)
	require.Len(t, broken.Methods, 1)
	show := broken.Methods[0]
	assert.Equal(t, []decl.Route{{
		Kind: decl.KindPostMapping, Path: "show", Verb: decl.Post, Options: decl.Options{},
	}}, show.Routes)
	assert.True(t, show.HasMiddleware)
	assert.Equal(t, []string{"csrf"}, show.Middleware)
}

func TestLoadIsRepeatable(t *testing.T) {
	first := table.New()
	second := table.New()
	require.NoError(t, newLoader(t, appConfig()).Load(first))
	require.NoError(t, newLoader(t, appConfig()).Load(second))
	assert.Equal(t, first.Rules(), second.Rules())

	err := newLoader(t, appConfig()).Load(first)
	var configErr *routeErrors.ConfigurationError
	require.True(t, errors.As(err, &configErr))
	assert.True(t, errors.Is(err, routeErrors.ErrDuplicateRoute))
}

func TestLoadDisabled(t *testing.T) {
	c := appConfig()
	c.Annotation.Route.Enable = false
	tb := table.New()
	require.NoError(t, newLoader(t, c).Load(tb))
	assert.Equal(t, 0, tb.Len())
}

func TestLoadMiddlewarePrecedence(t *testing.T) {
	c := appConfig()
	c.Annotation.Route.GroupPrecedence = config.PrecedenceMiddleware
	tb := table.New()
	require.NoError(t, newLoader(t, c).Load(tb))
	edit, ok := tb.Lookup(decl.Get, "edit/:id")
	require.True(t, ok)
	assert.Equal(t, []string{"auth", "csrf"}, edit.Middleware)
	_, ok = tb.Named("foo.bar")
	assert.True(t, ok)
}

func TestLoadDiscoveryError(t *testing.T) {
	dir := t.TempDir()
	layer := filepath.Join(dir, "controller")
	require.NoError(t, os.MkdirAll(layer, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(layer, "broken.go"), []byte("package controller\nfunc {"), 0o644))

	c := config.Default()
	c.AppPath = dir
	err := newLoader(t, c).Load(table.New())
	var discoveryErr *routeErrors.DiscoveryError
	assert.True(t, errors.As(err, &discoveryErr))
}

func TestNewLoaderInvalidPrecedence(t *testing.T) {
	c := appConfig()
	c.Annotation.Route.GroupPrecedence = "both"
	_, err := annoroute.NewLoader(c, source.NewGoSource(discard()), discard())
	assert.Error(t, err)
}
