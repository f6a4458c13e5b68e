package main

import (
	"chat-feed/internal"
	"flag"
	"log"
	"os"
)

func main() {
	dbPath := flag.String("db", "./data/badger", "Path to badger DB")
	prefix := flag.String("prefix", "msg:", "Prefix to scan")
	limit := flag.Int("limit", 1000, "Maximum number of rows")
	flag.Parse()

	db, err := internal.OpenReadOnly(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	rows, err := internal.ScanRows(db, *prefix, *limit, internal.MessageMapper)
	if err != nil {
		log.Fatal(err)
	}
	internal.RenderRows(os.Stdout, rows)
}
