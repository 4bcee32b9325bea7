// seed_fleet.go pushes train records from a JSON file into a running Depot.
//
// Usage:
//
//	go run scripts/seed_fleet.go -file fleet.json -api http://localhost:8700 -token $DEPOT_ADMIN_TOKEN
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/MikeSquared-Agency/Depot/internal/store"
)

func main() {
	filePath := flag.String("file", "fleet.json", "path to a JSON array of train records")
	apiURL := flag.String("api", "http://localhost:8700", "Depot API base URL")
	token := flag.String("token", "", "admin bearer token")
	operator := flag.String("operator", "seed-script", "X-Operator-ID header value")
	dryRun := flag.Bool("dry-run", false, "validate and print records without sending")
	flag.Parse()

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("read fleet file: %v", err)
	}
	var trains []store.Train
	if err := json.Unmarshal(data, &trains); err != nil {
		log.Fatalf("parse fleet file: %v", err)
	}

	valid := trains[:0]
	for _, t := range trains {
		if err := t.Validate(); err != nil {
			log.Printf("skip: %v", err)
			continue
		}
		valid = append(valid, t)
	}

	if *dryRun {
		for i, t := range valid {
			fmt.Printf("[%d] %s (status=%s, fitness_valid=%v, open_job_cards=%d, cleanliness=%d)\n",
				i+1, t.ID, t.Status, t.FitnessValid(), t.JobCards.Open, t.Cleaning.CleanlinessScore)
		}
		return
	}

	client := &http.Client{}
	stored, skipped := 0, len(trains)-len(valid)
	for _, t := range valid {
		body, _ := json.Marshal(t)
		req, err := http.NewRequest("PUT", trainURL(*apiURL, t.ID), bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %s: %v", t.ID, err)
			skipped++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Operator-ID", *operator)
		if *token != "" {
			req.Header.Set("Authorization", "Bearer "+*token)
		}

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %s: %v", t.ID, err)
			skipped++
			continue
		}
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			stored++
		} else {
			log.Printf("skip %s: status %d", t.ID, resp.StatusCode)
			skipped++
		}
	}

	log.Printf("done: %d stored, %d skipped", stored, skipped)
}

// trainURL is the record endpoint for id. Ids are path-escaped so a slash or
// space cannot address a different route.
func trainURL(base, id string) string {
	return strings.TrimRight(base, "/") + "/api/v1/fleet/" + url.PathEscape(id)
}
