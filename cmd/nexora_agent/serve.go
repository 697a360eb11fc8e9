package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nexora/opportunity-agent/internal/config"
	"github.com/nexora/opportunity-agent/internal/scheduler"
	"github.com/nexora/opportunity-agent/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server with the background scheduler",
	Long:  `Start an HTTP server exposing auth, profile, opportunity and recommendation endpoints, with periodic background pipeline runs for every user.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	c, err := buildComponents(ctx)
	if err != nil {
		return fmt.Errorf("failed to wire components: %w", err)
	}
	defer c.close()

	if servePort > 0 {
		c.cfg.Server.Port = servePort
	}

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return err
	}

	sched := scheduler.New(c.db, c.pipeline,
		c.cfg.Scheduler.IntervalHours, c.cfg.Scheduler.StaleRunAge, c.cfg.Scheduler.RunOnStart)
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	srv, err := server.New(server.Deps{
		Store:          c.db,
		Scheduler:      sched,
		Runner:         c.pipeline,
		ServerConfig:   c.cfg.Server,
		JWTConfig:      jwtConfig,
		PasswordConfig: passwordConfig,
		BestThreshold:  c.cfg.Matching.BestThreshold,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
