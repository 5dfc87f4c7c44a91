package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/riffvuln/udh-yappingny/internal/infrastructure/config"
	"github.com/riffvuln/udh-yappingny/internal/infrastructure/server"
)

const shutdownTimeout = 10 * time.Second

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Render pages through a remote WebDriver browser",
	Long: `Serves POST /bp: the request body is a URL, the response is the page
markup as rendered by a browser behind a W3C WebDriver endpoint.`,
	SilenceUsage: true,
	RunE:         runServer,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("webdriver", "", "WebDriver endpoint URL (overrides WEBDRIVER_URL)")

	rootCmd.Flags().String("host", "", "Listen host (overrides HOST)")
	rootCmd.Flags().String("port", "", "Listen port (overrides PORT)")
	rootCmd.Flags().String("browser", "", "Browser to drive: firefox or chrome (overrides WEBDRIVER_BROWSER)")
	rootCmd.Flags().Bool("dev", false, "Development logging (coloured console, debug level)")
}

// loadConfig reads the environment and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("webdriver"); v != "" {
		cfg.WebDriver.URL = v
	}
	if flags.Lookup("host") != nil {
		if v, _ := flags.GetString("host"); v != "" {
			cfg.Server.Host = v
		}
		if v, _ := flags.GetString("port"); v != "" {
			cfg.Server.Port = v
		}
		if v, _ := flags.GetString("browser"); v != "" {
			cfg.WebDriver.Browser = v
		}
		if dev, _ := flags.GetBool("dev"); dev {
			cfg.Logging.Development = true
			cfg.Logging.Level = "debug"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}
