package main

import (
	"os"

	"github.com/alecthomas/kong"
	konghcl "github.com/alecthomas/kong-hcl/v2"
	log "github.com/sirupsen/logrus"
	"github.com/squareup/unsaferow/conf"
	"github.com/squareup/unsaferow/errors"
	plog "github.com/squareup/unsaferow/log"
)

type arguments struct {
	Config  kong.ConfigFlag `help:"Path to config file" type:"existingfile"`
	Log     plog.Config     `help:"Configuration for the logger" embed:"" prefix:"log-"`
	Encoder conf.Config     `help:"Encoder configuration" embed:"" prefix:""`
	Columns string          `help:"Comma separated column types, e.g. \"INT, TEXT, NUMERIC(10,2)\"" required:""`

	Encode EncodeCommand `cmd:"" help:"Encode one row given on the command line"`
	Shell  ShellCommand  `cmd:"" help:"Encode rows entered interactively"`
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	cfg := arguments{}
	parser, err := kong.New(&cfg, kong.Configuration(konghcl.Loader))
	if err != nil {
		return errors.WithStack(err)
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return errors.WithStack(err)
	}
	if err := cfg.Log.Configure(); err != nil {
		return err
	}
	r, err := newRunner(cfg.Encoder, cfg.Columns, os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := r.close(); err != nil {
			log.Warnf("failed to stop metrics: %v", err)
		}
	}()
	return ctx.Run(r)
}
