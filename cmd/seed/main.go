// Command seed populates a running ember instance with synthetic ideas,
// viewers, and engagement events for local development and load checks.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

var categories = []string{"email", "crm", "social", "scraping", "reporting", "devops"}

var skillPool = []string{"zapier", "make", "n8n", "airtable", "sheets", "webhooks", "python", "llm"}

type client struct {
	base string
	http *http.Client
}

func (c *client) post(path string, body any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", path, err)
	}
	resp, err := c.http.Post(c.base+path, "application/json", bytes.NewReader(buf))
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("post %s: unexpected status %d", path, resp.StatusCode)
	}
	return nil
}

func main() {
	var (
		addr    = flag.String("addr", "http://localhost:9080", "base URL of the ember instance")
		ideas   = flag.Int("ideas", 50, "number of ideas to register")
		authors = flag.Int("authors", 10, "number of distinct authors")
		viewers = flag.Int("viewers", 5, "number of viewer profiles")
		events  = flag.Int("events", 1000, "number of engagement events")
		seed    = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	c := &client{base: *addr, http: &http.Client{Timeout: 10 * time.Second}}

	ideaIDs := make([]string, 0, *ideas)
	authorIDs := make([]string, 0, *authors)
	for i := 0; i < *authors; i++ {
		authorIDs = append(authorIDs, fmt.Sprintf("author-%03d", i))
	}

	for i := 0; i < *ideas; i++ {
		id := fmt.Sprintf("idea-%04d", i)
		ideaIDs = append(ideaIDs, id)
		skills := pick(rng, skillPool, 1+rng.Intn(3))
		age := time.Duration(rng.Intn(90*24)) * time.Hour
		idea := map[string]any{
			"id":           id,
			"author_id":    authorIDs[rng.Intn(len(authorIDs))],
			"category":     categories[rng.Intn(len(categories))],
			"skills":       skills,
			"published_at": time.Now().Add(-age).UTC().Format(time.RFC3339),
			"view_count":   rng.Intn(5000),
			"save_count":   rng.Intn(500),
		}
		if err := c.post("/ideas", idea); err != nil {
			fail(err)
		}
	}

	for i := 0; i < *viewers; i++ {
		v := map[string]any{
			"id":        fmt.Sprintf("viewer-%03d", i),
			"interests": pick(rng, append(append([]string{}, categories...), skillPool...), 2+rng.Intn(3)),
			"following": pick(rng, authorIDs, 1+rng.Intn(3)),
		}
		if err := c.post("/viewers", v); err != nil {
			fail(err)
		}
	}

	types := []string{"save", "save", "save", "copy", "copy", "build", "comment", "prompt_feedback", "unsave"}
	sent := 0
	for i := 0; i < *events; i++ {
		idx := rng.Intn(len(ideaIDs))
		ev := map[string]any{
			"event_id":  uuid.NewString(),
			"type":      types[rng.Intn(len(types))],
			"idea_id":   ideaIDs[idx],
			"author_id": authorIDs[idx%len(authorIDs)],
			"actor_id":  fmt.Sprintf("viewer-%03d", rng.Intn(*viewers+1)),
			"ts":        time.Now().Add(-time.Duration(rng.Intn(72)) * time.Hour).UTC().Format(time.RFC3339),
		}
		if ev["type"] == "prompt_feedback" {
			if rng.Float64() < 0.8 {
				ev["feedback"] = "worked"
			} else {
				ev["feedback"] = "didnt_work"
				ev["feedback_reason"] = "needs_update"
			}
		}
		if err := c.post("/events", ev); err != nil {
			fail(err)
		}
		sent++
	}

	fmt.Printf("seeded %d ideas, %d viewers, %d events against %s\n", len(ideaIDs), *viewers, sent, *addr)
}

func pick(rng *rand.Rand, pool []string, n int) []string {
	if n > len(pool) {
		n = len(pool)
	}
	idx := rng.Perm(len(pool))[:n]
	out := make([]string, 0, n)
	for _, i := range idx {
		out = append(out, pool[i])
	}
	return out
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "seed:", err)
	os.Exit(1)
}
