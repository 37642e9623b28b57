package main

import (
	"github.com/charmbracelet/log"

	"github.com/javiercbk/annoroute"
	"github.com/javiercbk/annoroute/cache"
	"github.com/javiercbk/annoroute/config"
	"github.com/javiercbk/annoroute/source"
	"github.com/javiercbk/annoroute/table"
)

// Globals are the flags shared by every command
type Globals struct {
	Config    string `help:"Route configuration file." type:"path" short:"c"`
	App       string `help:"Application root, overrides app_path." type:"path" short:"a"`
	CacheFile string `help:"Route cache file used instead of scanning when fresh." type:"path"`
}

func (g *Globals) loadConfig(logger *log.Logger) (config.Config, error) {
	c := config.Default()
	if len(g.Config) > 0 {
		var err error
		c, err = config.Decoder{Logger: logger}.Load(g.Config)
		if err != nil {
			return c, err
		}
	}
	if len(g.App) > 0 {
		c.AppPath = g.App
	}
	return c, nil
}

// scan builds a table from the annotated controllers
func (g *Globals) scan(c config.Config, logger *log.Logger) (*table.Table, error) {
	loader, err := annoroute.NewLoader(c, source.NewGoSource(logger), logger)
	if err != nil {
		return nil, err
	}
	tb := table.New()
	if err = loader.Load(tb); err != nil {
		return nil, err
	}
	return tb, nil
}

// routeTable replays the route cache when it matches the current revision and
// scans the controllers otherwise
func (g *Globals) routeTable(logger *log.Logger) (*table.Table, error) {
	c, err := g.loadConfig(logger)
	if err != nil {
		return nil, err
	}
	if len(g.CacheFile) == 0 {
		return g.scan(c, logger)
	}
	revision, err := cache.Revision(c.AppPath)
	if err != nil {
		logger.Warn("unable to read revision, scanning controllers", "err", err)
		return g.scan(c, logger)
	}
	store := cache.Store{Path: g.CacheFile, Logger: logger}
	snapshot, err := store.Load()
	if err != nil || snapshot.Stale(revision) {
		logger.Debug("route cache not usable, scanning controllers", "cache", g.CacheFile, "revision", revision)
		return g.scan(c, logger)
	}
	tb := table.New()
	if err = snapshot.Replay(tb); err != nil {
		logger.Errorf("error replaying route cache %s: %v", g.CacheFile, err)
		return nil, err
	}
	logger.Debug("route cache replayed", "cache", g.CacheFile, "rules", tb.Len())
	return tb, nil
}
