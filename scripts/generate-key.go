// Package main is a development utility for generating a test API key. It
// prints the raw key and a ready-to-run SQL INSERT statement so developers
// can quickly seed a usable access key in a local database without running
// the full server flow. Do not use generated keys in production — use the
// seed command or create keys against a real user record.
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/cigardb/cigardb/internal/auth"
)

func main() {
	level := 0
	if len(os.Args) > 1 {
		parsed, err := strconv.Atoi(os.Args[1])
		if err != nil {
			log.Fatalf("usage: %s [access_level]", os.Args[0])
		}
		level = parsed
	}

	key, err := auth.GenerateAPIKey("cdb")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println("Generated API key:")
	fmt.Println(key)
	fmt.Println()
	fmt.Println("SQL to seed it:")
	fmt.Printf(`INSERT INTO access_keys (id, api_key, name, access_level, request_count, window_started_at, created_at)
VALUES (gen_random_uuid(), '%s', 'generated dev key', %d, 0, NOW(), NOW());
`, key, level)
}
