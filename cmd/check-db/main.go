// Package main is a diagnostic tool for testing database connectivity and
// inspecting live catalog data. It connects to the database, summarizes the
// brands, cigars, and moderation queues by status, and prints the result to
// stdout. The binary exits with a non-zero code on any failure so it can be
// embedded in health checks or CI/CD pipeline steps to gate deployments on a
// reachable, populated database.
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

func main() {
	dbPassword := os.Getenv("DATABASE_PASSWORD")
	if dbPassword == "" {
		dbPassword = "cigardb"
	}

	connStr := fmt.Sprintf("host=localhost port=5432 user=cigardb password=%s dbname=cigardb sslmode=disable", dbPassword)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	fmt.Println("=== BRANDS ===")
	printStatusCounts(db, "brands")

	fmt.Println("\n=== CIGARS ===")
	printStatusCounts(db, "cigars")

	fmt.Println("\n=== PENDING REQUESTS ===")
	rows, err := db.Query("SELECT kind, target_type, COUNT(*) FROM pending_requests WHERE status = 'pending' GROUP BY kind, target_type ORDER BY kind, target_type")
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()

	queued := 0
	for rows.Next() {
		var kind, targetType string
		var count int
		if err := rows.Scan(&kind, &targetType, &count); err != nil {
			log.Printf("Warning: failed to scan request row: %v", err)
			continue
		}
		fmt.Printf("%s %s requests: %d\n", targetType, kind, count)
		queued += count
	}
	if queued == 0 {
		fmt.Println("No pending requests.")
	}

	var keys int
	if err := db.QueryRow("SELECT COUNT(*) FROM access_keys").Scan(&keys); err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	fmt.Printf("\nAccess keys: %d\n", keys)
}

func printStatusCounts(db *sql.DB, table string) {
	rows, err := db.Query(fmt.Sprintf("SELECT status, COUNT(*) FROM %s GROUP BY status ORDER BY status", table))
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()

	total := 0
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			log.Printf("Warning: failed to scan %s row: %v", table, err)
			continue
		}
		fmt.Printf("%s: %d\n", status, count)
		total += count
	}
	if total == 0 {
		fmt.Printf("No %s found!\n", table)
	}
}
