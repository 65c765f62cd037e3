package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/fortuna/nyx/internal/ingest/espn"
)

// Simple test utility to verify the ESPN injuries scraper works
func main() {
	log.Println("Testing ESPN Injuries Scraper")
	log.Println("===============================")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client := espn.NewClient("")
	defer client.Close()

	log.Println("\n1. Fetching ESPN injuries page...")
	htmlContent, err := client.FetchInjuriesHTML(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch injuries page: %v", err)
	}

	log.Printf("✓ Retrieved HTML content (%d bytes)", len(htmlContent))

	doc, err := espn.ParseHTML(htmlContent)
	if err != nil {
		log.Fatalf("Failed to parse HTML: %v", err)
	}

	observations := espn.ParseInjuries(doc)
	log.Printf("✓ Found %d injury rows\n", len(observations))

	if len(observations) == 0 {
		log.Println("No injury rows currently listed")
		log.Println("(This is expected in the deep offseason)")
	} else {
		byTeam := make(map[string]int)
		for _, obs := range observations {
			byTeam[obs.TeamLabel]++
		}
		log.Printf("Teams with listed injuries: %d", len(byTeam))

		show := observations
		if len(show) > 10 {
			show = show[:10]
		}
		for i, obs := range show {
			log.Printf("\nRow %d:", i+1)
			log.Printf("  Team: %s", obs.TeamLabel)
			log.Printf("  Player: %s", obs.Player)
			log.Printf("  Status: %s", obs.Status)
			log.Printf("  Est. return: %s", obs.EstReturn)
		}
	}

	log.Println("\n===============================")
	log.Println("✓ ESPN Injuries Scraper Test Complete")

	os.Exit(0)
}
