package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/server"
	"github.com/hailam/chessplay/internal/storage"
)

var (
	addr      = flag.String("addr", ":8080", "listen address")
	origins   = flag.String("origins", "*", "allowed CORS origins, empty disables CORS")
	dataDir   = flag.String("data", "", "database directory, empty uses the platform data directory")
	noRecord  = flag.Bool("no-record", false, "do not record finished games")
	heuristic = flag.String("heuristic", engine.EvalMaterial, "evaluation function")
)

func main() {
	flag.Parse()
	logger := log.New(os.Stderr, "chessplay-server: ", log.LstdFlags)

	eval, err := engine.EvaluatorByName(*heuristic)
	if err != nil {
		logger.Fatal(err)
	}

	var recorder server.Recorder
	if !*noRecord {
		var store *storage.Storage
		if *dataDir != "" {
			store, err = storage.NewStorageAt(*dataDir)
		} else {
			store, err = storage.NewStorage()
		}
		if err != nil {
			logger.Fatalf("opening storage: %v", err)
		}
		defer store.Close()

		if stats, err := store.LoadStats(); err == nil {
			logger.Printf("%d games recorded so far", stats.GamesPlayed)
		}
		recorder = store
	}

	app := server.New(server.NewGameManager(recorder, eval), server.Options{
		AllowOrigins: *origins,
		Logger:       logger,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Printf("shutting down")
		if err := app.Shutdown(); err != nil {
			logger.Printf("shutdown: %v", err)
		}
	}()

	logger.Printf("listening on %s", *addr)
	if err := app.Listen(*addr); err != nil {
		logger.Printf("listen: %v", err)
	}
}
