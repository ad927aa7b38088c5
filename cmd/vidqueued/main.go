// Command vidqueued runs the vidqueue server with the default configuration
// lookup, for use under a service manager.
package main

import (
	"context"
	"flag"
	"log"

	"vidqueue/internal/config"
	"vidqueue/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{}); err != nil {
		log.Fatalf("vidqueued: %v", err)
	}
}
