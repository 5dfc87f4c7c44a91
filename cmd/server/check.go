package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/riffvuln/udh-yappingny/internal/webdriver"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Query the WebDriver endpoint's readiness and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		client := webdriver.NewClient(webdriver.Config{URL: cfg.WebDriver.URL, Timeout: cfg.WebDriver.Timeout})
		st, err := client.Status(ctx)
		if err != nil {
			return fmt.Errorf("%s unreachable: %w", cfg.WebDriver.URL, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s ready=%t %s\n", cfg.WebDriver.URL, st.Ready, st.Message)
		if !st.Ready {
			return fmt.Errorf("%s is not ready", cfg.WebDriver.URL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
