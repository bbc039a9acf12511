//go:build ignore

package main

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

// Loads a sales CSV (sale_date,product_name,quantity,total_price) into the
// sales table of the database at DATABASE_URL. Pair with cmd/salesgen to
// seed a fresh database with demo data:
//
//	go run ./cmd/salesgen -out sales_data.csv
//	go run scripts/utilities/seed_sales.go sales_data.csv
func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: seed_sales.go <sales.csv>")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to open CSV: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		log.Fatalf("Failed to read CSV: %v", err)
	}
	if len(rows) < 2 {
		log.Fatal("CSV has no data rows")
	}

	col := map[string]int{}
	for i, name := range rows[0] {
		col[name] = i
	}
	for _, required := range []string{"sale_date", "quantity"} {
		if _, ok := col[required]; !ok {
			log.Fatalf("CSV missing required column %q", required)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to start transaction: %v", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO sales (sale_date, product_name, quantity, total_price) VALUES ($1, $2, $3, $4)")
	if err != nil {
		log.Fatalf("Failed to prepare insert: %v", err)
	}
	defer stmt.Close()

	inserted := 0
	for i, row := range rows[1:] {
		qty, err := strconv.Atoi(row[col["quantity"]])
		if err != nil {
			log.Fatalf("Row %d: bad quantity %q", i+2, row[col["quantity"]])
		}

		product := ""
		if idx, ok := col["product_name"]; ok {
			product = row[idx]
		}
		price := 0
		if idx, ok := col["total_price"]; ok {
			price, _ = strconv.Atoi(row[idx])
		}

		if _, err := stmt.Exec(row[col["sale_date"]], product, qty, price); err != nil {
			log.Fatalf("Row %d: insert failed: %v", i+2, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit: %v", err)
	}

	fmt.Printf("✅ Inserted %d sales rows\n", inserted)
}
