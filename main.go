package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var (
	flagEnvFile        string
	flagConnectTimeout time.Duration
	flagQueryTimeout   time.Duration
	flagMaxRows        int64
)

var rootCmd = &cobra.Command{
	Use:   "spectra-gateway",
	Short: "local database gateway for Spectra Studio",
	Long: `spectra-gateway bridges a single client to Redis, MySQL, PostgreSQL,
SQLite and MongoDB through one JSON-RPC command surface on stdio,
optionally tunneling backend connections over SSH.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gateway version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s v%s\n", ServerName, ServerVersion)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "load environment from this file (default: .env if present)")
	rootCmd.Flags().DurationVar(&flagConnectTimeout, "connect-timeout", defaultConnectTimeout, "deadline for backend connect attempts")
	rootCmd.Flags().DurationVar(&flagQueryTimeout, "query-timeout", 0, "deadline for queries (0 disables)")
	rootCmd.Flags().Int64Var(&flagMaxRows, "max-rows", 1000, "page size cap for row fetches (0 disables)")
	rootCmd.AddCommand(versionCmd)
}

func runServe() error {
	if flagEnvFile != "" {
		if err := godotenv.Load(flagEnvFile); err != nil {
			return fmt.Errorf("loading %s: %w", flagEnvFile, err)
		}
	} else {
		// Best effort; a missing .env is fine.
		godotenv.Load()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logError("Received shutdown signal")
		cancel()
	}()

	gateway := NewGateway(flagConnectTimeout, flagQueryTimeout, flagMaxRows)
	server := NewServer(ctx, gateway)
	defer server.Close()

	logError("%s v%s started", ServerName, ServerVersion)

	if err := server.Run(); err != nil {
		if err == context.Canceled {
			logError("Server shutdown gracefully")
			return nil
		}
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
