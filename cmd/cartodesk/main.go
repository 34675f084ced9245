package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
	_ "github.com/kirinyoku/cartodesk/docs"
)

// Options groups the sub-commands. Struct tags are read by go-flags.
type Options struct {
	Serve ServeCmd `command:"serve" description:"Start the HTTP API"`
	Token TokenCmd `command:"token" description:"Issue an access token"`
}

// @title                       Cartodesk API
// @version                     1.0
// @description                 Queue, lifecycle and reporting backend for a cartomancy reading service.
// @host                        localhost:8080
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	var opts Options

	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
