package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"github.com/hailam/megalodon/internal/board"
	"github.com/hailam/megalodon/internal/oracle"
)

func main() {
	fen := flag.String("fen", board.StartFEN, "position to count from")
	depth := flag.Int("depth", 5, "perft depth")
	divide := flag.Bool("divide", false, "print the count below each root move")
	verify := flag.Bool("verify", false, "compare each root move against a reference generator")
	flag.Parse()

	pos, err := board.ParseFEN(*fen)
	if err != nil {
		log.Fatal(err)
	}
	if *depth < 1 {
		log.Fatalf("depth must be at least 1, got %d", *depth)
	}

	start := time.Now()
	var nodes uint64
	if *divide {
		div := board.Divide(&pos, *depth)
		moves := make([]string, 0, len(div))
		for m, n := range div {
			moves = append(moves, m)
			nodes += n
		}
		sort.Strings(moves)
		for _, m := range moves {
			fmt.Printf("%s: %d\n", m, div[m])
		}
	} else {
		nodes = board.Perft(&pos, *depth)
	}
	elapsed := time.Since(start)

	fmt.Printf("Nodes: %d\n", nodes)
	fmt.Printf("Time: %v\n", elapsed)
	if elapsed > 0 {
		fmt.Printf("NPS: %.0f\n", float64(nodes)/elapsed.Seconds())
	}

	if !*verify {
		return
	}
	mismatches, err := oracle.Compare(&pos, *depth)
	if err != nil {
		log.Fatal(err)
	}
	if len(mismatches) == 0 {
		fmt.Println("Verify: OK")
		return
	}
	for _, m := range mismatches {
		fmt.Printf("Verify: %s got %d want %d\n", m.Move, m.Got, m.Want)
	}
	os.Exit(1)
}
