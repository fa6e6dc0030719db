package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/EdSoftcase/edson-sub001/internal/cli"
	"github.com/EdSoftcase/edson-sub001/internal/collab"
	"github.com/EdSoftcase/edson-sub001/internal/config"
	internal_http "github.com/EdSoftcase/edson-sub001/internal/http"
	"github.com/EdSoftcase/edson-sub001/internal/log"
	internal_storage "github.com/EdSoftcase/edson-sub001/internal/storage"
	"github.com/EdSoftcase/edson-sub001/pkg/service"
)

var rootCmd = &cobra.Command{Use: "automation"}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the automation HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			log.GetLogger().Errorf("Failed to load config: %v", err)
			os.Exit(1)
		}
		connStr, _ := cmd.Flags().GetString("db")
		if connStr == "" {
			connStr = cfg.DB.URL
		}
		if connStr == "" {
			fmt.Println("Error: --db flag or AUTOMATION_DB_URL required")
			os.Exit(1)
		}
		store, err := internal_storage.InitStore(connStr)
		if err != nil {
			log.GetLogger().Errorf("Failed to initialize store: %v", err)
			os.Exit(1)
		}
		defer store.Close()

		logger := log.GetLogger()
		svc := service.NewAutomationService(store, collab.Default(store, logger), logger)
		if err := internal_http.StartServer(cfg.Port, svc); err != nil {
			logger.Errorf("Server stopped: %v", err)
			os.Exit(1)
		}
	},
}

func main() {
	rootCmd.PersistentFlags().String("db", "", "Database connection string")
	rootCmd.AddCommand(serveCmd)
	cli.SetupCLI(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
