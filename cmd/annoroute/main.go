package main

import (
	"os"
	"time"

	"github.com/alecthomas/kong"
	kongyaml "github.com/alecthomas/kong-yaml"
	"github.com/charmbracelet/log"
)

// CLI is the annoroute command line
type CLI struct {
	Globals

	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info" name:"log-level"`

	Routes  RoutesCmd  `cmd:"" help:"Print the annotated routes."`
	Swagger SwaggerCmd `cmd:"" help:"Export the annotated routes as Swagger 2.0 YAML."`
	Serve   ServeCmd   `cmd:"" help:"Serve the annotated routes with placeholder handlers."`
	Cache   CacheCmd   `cmd:"" help:"Manage the route cache."`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("annoroute"),
		kong.Description("Declarative route registration from annotated controllers"),
		kong.UsageOnError(),
		kong.Configuration(kongyaml.Loader, ".annoroute.yaml", "~/.config/annoroute.yaml"),
	)

	level, err := log.ParseLevel(cli.LogLevel)
	if err != nil {
		_, _ = os.Stderr.WriteString("invalid log level: " + err.Error() + "\n")
		os.Exit(2)
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          "annoroute",
	})

	ctx.Bind(logger)
	ctx.Bind(&cli.Globals)
	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
