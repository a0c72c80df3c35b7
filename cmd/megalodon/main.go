package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/megalodon/internal/engine"
	"github.com/hailam/megalodon/internal/storage"
	"github.com/hailam/megalodon/internal/uci"
)

var (
	cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")
	hashMB     = flag.Int("hash", engine.DefaultOptions().HashMB, "transposition table size in MB")
	dbDir      = flag.String("db", "", "settings and analysis database directory (default: user data dir)")
	noDB       = flag.Bool("nodb", false, "do not persist settings or analysis")
)

func main() {
	flag.Parse()
	// stdout carries the protocol.
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

	opts := engine.DefaultOptions()
	opts.HashMB = *hashMB
	eng := engine.New(opts)
	defer eng.Close()

	protocol := uci.New(eng, os.Stdin, os.Stdout)

	if !*noDB {
		store, err := storage.Open(*dbDir)
		if err != nil {
			log.Printf("Warning: storage not available: %v (settings will not persist)", err)
		} else {
			defer store.Close()
			if err := protocol.Attach(store); err != nil {
				log.Printf("Warning: %v", err)
			}
		}
	}

	if err := protocol.Run(); err != nil {
		log.Printf("read commands: %v", err)
	}
}
