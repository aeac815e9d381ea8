package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chessplay/internal/engine"
	"github.com/hailam/chessplay/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	difficulty = flag.String("difficulty", "medium", "search depth preset: easy, medium or hard")
	heuristic  = flag.String("heuristic", engine.EvalMaterial, "evaluation function")
	cacheSize  = flag.Int64("cache", 0, "evaluation cache entries, 0 disables the cache")
	threads    = flag.Int("threads", 1, "root search workers")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	eval, err := engine.EvaluatorByName(*heuristic)
	if err != nil {
		log.Fatal(err)
	}
	if *cacheSize > 0 {
		cached, err := engine.NewCached(eval, *cacheSize)
		if err != nil {
			log.Fatal(err)
		}
		defer cached.Close()
		eval = cached
	}

	d, err := engine.ParseDifficulty(*difficulty)
	if err != nil {
		log.Fatal(err)
	}

	eng := engine.NewEngine(eval)
	eng.SetDifficulty(d)
	eng.SetWorkers(*threads)

	protocol := uci.New(eng)
	if err := protocol.Run(); err != nil {
		log.Printf("uci: %v", err)
	}
}
