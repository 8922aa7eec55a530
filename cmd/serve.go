package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ixink/uiu-student-bot/internal/server"
)

var flagListenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long:  "Serve recommendations, source lookups and profile management over HTTP for external chat transports.",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		addr := a.cfg.Addr()
		if flagListenAddr != "" {
			addr = flagListenAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		srv := server.New(addr, a.svc, a.profiles, a.log)
		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running server: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&flagListenAddr, "addr", "", "listen address (overrides config)")
}
