package main

import (
	"chat-feed/internal"
	"fmt"
	"log"
	"net/http"
	"time"
)

type Config struct {
	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`
	DebugPort      int    `env:"DEBUG_PORT,default=9091"`
}

func main() {
	// 1. Load config
	var config Config
	if err := internal.LoadEnv(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in Read-Only mode, the server may hold the lock
	db, err := internal.OpenReadOnly(config.BadgerFilepath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Serve the inspector only
	mux := http.NewServeMux()
	mux.Handle("/inspect", internal.InspectHandler(db, internal.MessageMapper))
	server := &http.Server{
		Addr:              fmt.Sprintf("0.0.0.0:%d", config.DebugPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	fmt.Printf("Viewer started at http://localhost:%d/inspect?prefix=msg:\n", config.DebugPort)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Viewer stopped: %v", err)
	}
}
