// Package cli defines the Cobra commands of burnerctl, the burner control client.
// Every host command maps onto one call to the burner HTTP API.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/burner/internal/version"
)

const defaultAddr = "http://localhost:8080"

var (
	addr    string
	token   string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "burnerctl",
	Short: "Control a running burner daemon",
	Long: `burnerctl drives the burner daemon over its HTTP API: toggle burn mode,
trigger a burn, pick a model, change the interval and read the diagnostic log.`,
	Version:       version.Version,
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu(cmd, args)
	},
}

// Execute runs the root command. Called from main.
// Validation rejections exit with status 2, every other failure with 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		if IsValidation(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClientFromFlags() *client {
	return newClient(addr, token, timeout)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&addr, "addr", envOr("BURNER_ADDR", defaultAddr), "Burner API base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("BURNER_TOKEN"), "Bearer token for the burner API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(enableCmd)
	rootCmd.AddCommand(disableCmd)
	rootCmd.AddCommand(burnCmd)
	rootCmd.AddCommand(modelCmd)
	rootCmd.AddCommand(intervalCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(watchCmd)
}
