// Command hosplan schedules trips from YAML files and prints Hours-of-Service
// daily logs. It needs no database; legs missing from a trip file are fetched
// from OpenRouteService when ORS_API_KEY or --ors-key is set.
//
//	hosplan schedule -f trip.yaml [--format text|json|csv]
//	hosplan batch [--workers N] trip1.yaml trip2.yaml ...
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkordes/eld-logbook/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.App{Stdout: os.Stdout, Stderr: os.Stderr}.Run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
