// cmd/server/main.go
package main

import (
	"fmt"
	"os"

	"github.com/clipsense/clipsense/internal/httpapi"
	"github.com/clipsense/clipsense/internal/utils"
	"github.com/clipsense/clipsense/pkg/api"
)

// Version information (set by build flags)
var (
	version = "dev"
)

func main() {
	cfg := api.DefaultConfig()
	if len(os.Args) > 1 {
		loaded, err := api.LoadConfig(os.Args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	logger := utils.NewLoggerWithLevel(utils.ParseLogLevel(cfg.LogLevel))

	client, err := api.NewClient(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := httpapi.NewServer(client, logger, version).Run(cfg.Server.ListenAddress); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
