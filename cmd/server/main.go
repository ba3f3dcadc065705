// Command server starts the duel game server: room lifecycle, matchmaking
// queue, rules engine, and effect runtime behind a websocket gateway.
package main

import (
	"context"
	"log"
	"os"

	"github.com/spf13/pflag"

	"duelserver/internal/app"
	"duelserver/internal/config"
)

func main() {
	cfg, warnings := config.FromEnv()
	for _, w := range warnings {
		log.Printf("config: %s", w)
	}

	fs := pflag.NewFlagSet("duelserver", pflag.ExitOnError)
	config.BindFlags(fs, &cfg)
	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}

	if err := app.Run(context.Background(), &cfg); err != nil {
		log.Fatalf("%v", err)
	}
}
