package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aqlanhadi/tally/api"
	"github.com/aqlanhadi/tally/integrations/postgres"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Starts the HTTP API server that builds statements and values returns from
posted JSON. When a database URL is configured, statements can also be built
from stored snapshots.`,
	Run: func(cmd *cobra.Command, args []string) {
		log.SetOutput(os.Stdout)
		log.SetFlags(log.Ltime | log.Lmsgprefix)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg := api.DefaultConfig()
		cfg.Port = ":" + viper.GetString("server.port")
		if d := viper.GetDuration("server.request_timeout"); d > 0 {
			cfg.RequestTimeout = d
		}
		if n := viper.GetInt64("server.max_body_bytes"); n > 0 {
			cfg.MaxBodyBytes = n
		}
		cfg.LogPrefix = "SERVER: "

		deps := api.Deps{
			Service:    newService(),
			Normalizer: newNormalizer(),
		}
		if dbURL := viper.GetString("database.url"); dbURL != "" {
			db, err := postgres.Connect(ctx, dbURL, viper.GetInt32("database.max_conns"))
			if err != nil {
				log.Fatalf("Failed to connect to database: %v", err)
			}
			defer db.Close()
			if err := db.EnsureSchema(ctx); err != nil {
				log.Fatalf("Failed to prepare schema: %v", err)
			}
			deps.Store = db
			log.Printf("%sStored statements enabled", cfg.LogPrefix)
		}

		server := api.New(cfg, deps)
		if err := server.Start(ctx); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to run the API server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
