package main

import (
	"context"
	"log"
	"os"

	"github.com/wonderfulrabbits/rabbitsapi/internal/server"
	"github.com/wonderfulrabbits/rabbitsapi/internal/server/config"
)

func main() {

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("%v", err)
		os.Exit(2)
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		os.Exit(1)
	}

}
