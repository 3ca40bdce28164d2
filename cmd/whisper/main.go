package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/spf13/pflag"

	"github.com/aussiebroadwan/whisper/internal/whisper/app"
)

func main() {
	cfg, err := app.LoadConfig(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		app.Usage(os.Stdout)
		return
	}
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	application, err := app.New(context.Background(), cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}
