package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/vieri-corp/vieribot/api"
	"github.com/vieri-corp/vieribot/internal/bot"
	"github.com/vieri-corp/vieribot/internal/config"
	"github.com/vieri-corp/vieribot/internal/database"
	"github.com/vieri-corp/vieribot/internal/logger"
	"github.com/vieri-corp/vieribot/internal/monitor"
)

func main() {
	config.Load()

	logg, err := logger.New(config.Debug)
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logg.Sync()

	db, err := database.Connect(config.DatabaseType, config.GetDatabaseConnectionString())
	if err != nil {
		logg.Fatal("error connecting to database", "error", err)
	}

	service := monitor.NewService(
		api.NewClient(config.TetrBaseURL, config.UserAgent),
		database.NewRepository(db),
		logg,
		config.MaxConcurrentRequests,
	)

	b, err := bot.New(service, logg)
	if err != nil {
		logg.Fatal("error creating bot", "error", err)
	}

	if err := b.Start(); err != nil {
		logg.Fatal("error starting bot", "error", err)
	}

	// Wait for a SIGINT or SIGTERM signal
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	b.Stop()
}
