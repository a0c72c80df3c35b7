package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hailam/megalodon/internal/engine"
	"github.com/hailam/megalodon/internal/httpapi"
	"github.com/hailam/megalodon/internal/storage"
)

const DefaultPort = 8080

func main() {
	var port uint
	flag.UintVar(&port, "port", DefaultPort, "Port to listen on")
	hashMB := flag.Int("hash", engine.DefaultOptions().HashMB, "transposition table size in MB")
	depth := flag.Int("depth", engine.DefaultOptions().MaxDepth, "search depth when a request gives none")
	dbDir := flag.String("db", "", "analysis database directory (default: user data dir)")
	memDB := flag.Bool("memdb", false, "keep analysis in memory only")
	flag.Parse()
	if port == 0 || port > 65535 {
		fmt.Println("Invalid port number")
		os.Exit(1)
	}

	opts := engine.DefaultOptions()
	opts.HashMB, opts.MaxDepth = *hashMB, *depth
	eng := engine.New(opts)
	defer eng.Close()

	var (
		store *storage.Storage
		err   error
	)
	if *memDB {
		store, err = storage.OpenInMemory()
	} else {
		store, err = storage.Open(*dbDir)
	}
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	srv := httpapi.NewServer(eng, store)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Close(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := srv.Listen(fmt.Sprintf(":%d", port)); err != nil {
		log.Fatal(err)
	}
}
