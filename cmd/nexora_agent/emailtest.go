package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexora/opportunity-agent/internal/config"
	"github.com/nexora/opportunity-agent/internal/email"
)

var emailTestTo string

var emailTestCmd = &cobra.Command{
	Use:   "email-test",
	Short: "Send a test email to verify vendor credentials",
	RunE:  runEmailTest,
}

func init() {
	emailTestCmd.Flags().StringVar(&emailTestTo, "to", "", "Recipient address (required)")
	_ = emailTestCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(emailTestCmd)
}

func runEmailTest(_ *cobra.Command, _ []string) error {
	cfg := config.NewEmailConfig()
	if !cfg.Enabled() {
		return fmt.Errorf("EMAIL_API_ENDPOINT and EMAIL_API_KEY must be set")
	}

	mailer, err := email.NewVendorMailer(cfg.Endpoint, cfg.APIKey, cfg.From)
	if err != nil {
		return err
	}

	if err := mailer.SendTest(context.Background(), emailTestTo); err != nil {
		return fmt.Errorf("test send failed: %w", err)
	}
	fmt.Printf("Test email sent to %s\n", emailTestTo)
	return nil
}
