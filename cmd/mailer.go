/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/techmaa/portal/config"
	"github.com/techmaa/portal/internal/mq"
	"github.com/techmaa/portal/internal/notify"
)

// mailerCmd represents the mailer command
var mailerCmd = &cobra.Command{
	Use:   "mailer",
	Short: "Delivers queued notification emails over SMTP",
	Long: `Consumes the notification queue and delivers each message over SMTP.
Requires NOTIFY_BACKEND=rabbitmq or NOTIFY_BACKEND=pubsub. Usage:

	portal mailer
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		backend, err := mq.Open(ctx, cfg)
		if err != nil {
			return fmt.Errorf("open notify backend: %w", err)
		}
		if backend == nil {
			return fmt.Errorf("notify backend %q does not use a queue", cfg.Notify.Backend)
		}
		defer backend.Close()

		sender, err := notify.NewSMTPSender(cfg.SMTP)
		if err != nil {
			return err
		}

		log.Printf("relaying %s to %s:%d", cfg.Notify.Channel, cfg.SMTP.Host, cfg.SMTP.Port)
		if err := notify.Relay(ctx, backend, cfg.Notify.Channel, sender); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mailerCmd)
}
