package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"mod-builder/core/kv"
)

// Reports how the block scanner sees an item data file: size, whether it is
// minified, how long scanning takes and which ids fail to resolve.
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: debug_blocks <items_game.txt> [id...]")
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	text := string(data)

	fmt.Println("=== FILE ===")
	fmt.Printf("Size: %d bytes, lines: %d\n", len(text), strings.Count(text, "\n")+1)
	fmt.Printf("Minified: %v\n", kv.IsMinified(text))

	if kv.IsMinified(text) {
		start := time.Now()
		text = kv.Prettify(text)
		fmt.Printf("Prettified in %s (%d bytes)\n", time.Since(start), len(text))
	}

	fmt.Println("\n=== SCAN ===")
	start := time.Now()
	blocks := kv.ExtractAll(text)
	fmt.Printf("Entry blocks: %d in %s\n", len(blocks), time.Since(start))
	for i, b := range blocks {
		if i == 5 {
			fmt.Printf("  ... %d more\n", len(blocks)-5)
			break
		}
		fmt.Printf("  %s at %d (%d bytes)\n", b.ID, b.Start, b.End-b.Start)
	}

	if len(os.Args) > 2 {
		fmt.Println("\n=== LOOKUP ===")
		for _, id := range os.Args[2:] {
			start := time.Now()
			b, ok := kv.FindBlock(text, id)
			if !ok {
				fmt.Printf("  %s: not found (%s)\n", id, time.Since(start))
				continue
			}
			fmt.Printf("  %s: %d..%d line start %d (%s)\n", id, b.Start, b.End, b.LineStart, time.Since(start))
		}
	}
}
