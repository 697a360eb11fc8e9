// Package main provides the entry point for the Nexora opportunity agent.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "nexora_agent",
	Short: "Opportunity aggregation and recommendation agent",
	Long:  "Nexora aggregates jobs, internships and hackathons from multiple sources, matches them against user profiles and serves personalized recommendations via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
