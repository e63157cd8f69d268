// Package main runs one narrative operation against the configured world.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	narrativecmd "github.com/louisbranch/questline/internal/cmd/narrative"
	apperrors "github.com/louisbranch/questline/internal/platform/errors"
)

func main() {
	cfg, err := narrativecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[NARRATIVE] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := narrativecmd.Run(ctx, cfg); err != nil {
		log.Printf("narrative %s: %v", cfg.Verb, err)
		log.Fatal(apperrors.LocalizedMessage(err, cfg.Locale))
	}
}
