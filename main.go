package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yeremiapane/pos-app/utils"
)

var rootCmd = &cobra.Command{
	Use:   "pos",
	Short: "Point-of-sale server",
	Long: `pos runs the point-of-sale HTTP server: the REST API for users, orders,
tables and payments, plus the server-rendered staff views.

Configuration is read from .env and the process environment.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		utils.ErrorLogger.WithError(err).Error("command failed")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
