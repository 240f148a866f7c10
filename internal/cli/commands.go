package cli

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/burner/internal/domain"
	api "github.com/kailas-cloud/burner/internal/transport/chi"
	"github.com/kailas-cloud/burner/internal/usecase/status"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Show the quick-pick menu for the current state",
	Args:  cobra.NoArgs,
	RunE:  runMenu,
}

var enableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable burn mode",
	Args:  cobra.NoArgs,
	RunE:  runToggle(http.MethodPost, "/enable"),
}

var disableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable burn mode",
	Args:  cobra.NoArgs,
	RunE:  runToggle(http.MethodPost, "/disable"),
}

var burnWait bool

var burnCmd = &cobra.Command{
	Use:   "burn",
	Short: "Trigger a burn now",
	Long: `Trigger a burn immediately. The request is ignored by the daemon if a burn
is already in flight. With --wait the command blocks until the burn finishes.`,
	Args: cobra.NoArgs,
	RunE: runBurn,
}

var modelCmd = &cobra.Command{
	Use:   "model [id|auto]",
	Short: "List models or select the model to burn with",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runModel,
}

var intervalCmd = &cobra.Command{
	Use:   "interval <minutes>",
	Short: "Set the burn interval in minutes",
	Args:  cobra.ExactArgs(1),
	RunE:  runInterval,
}

var logTail int

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the diagnostic log",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the status indicator and counters",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	burnCmd.Flags().BoolVar(&burnWait, "wait", false, "Wait for the burn to finish and print its outcome")
	logCmd.Flags().IntVar(&logTail, "tail", 0, "Show only the last N lines (0 = all)")
}

func runMenu(cmd *cobra.Command, _ []string) error {
	var resp api.MenuResponse
	if err := newClientFromFlags().do(cmd.Context(), http.MethodGet, "/menu", nil, &resp); err != nil {
		return err
	}
	printItems(cmd.OutOrStdout(), resp.Items)
	return nil
}

func runToggle(method, path string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		var state domain.BurnState
		if err := newClientFromFlags().do(cmd.Context(), method, path, nil, &state); err != nil {
			return err
		}
		printState(cmd.OutOrStdout(), state)
		return nil
	}
}

func runBurn(cmd *cobra.Command, _ []string) error {
	path := "/burn"
	if burnWait {
		path += "?wait=true"
	}

	var resp api.BurnResponse
	if err := newClientFromFlags().do(cmd.Context(), http.MethodPost, path, nil, &resp); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if resp.Outcome == "" {
		fmt.Fprintln(out, "Burn triggered")
	} else {
		fmt.Fprintf(out, "Burn %s\n", resp.Outcome)
	}
	printState(out, resp.State)
	return nil
}

func runModel(cmd *cobra.Command, args []string) error {
	c := newClientFromFlags()
	if len(args) == 0 {
		var resp api.MenuResponse
		if err := c.do(cmd.Context(), http.MethodGet, "/models", nil, &resp); err != nil {
			return err
		}
		printItems(cmd.OutOrStdout(), resp.Items)
		return nil
	}

	var state domain.BurnState
	if err := c.do(cmd.Context(), http.MethodPut, "/model", api.SetModelRequest{Model: args[0]}, &state); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Model set to: %s\n", state.ModelLabel())
	return nil
}

func runInterval(cmd *cobra.Command, args []string) error {
	var state domain.BurnState
	err := newClientFromFlags().do(cmd.Context(), http.MethodPut, "/interval", api.SetIntervalRequest{Value: args[0]}, &state)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Interval set to %d minutes\n", state.IntervalMinutes)
	return nil
}

func runLog(cmd *cobra.Command, _ []string) error {
	path := "/log"
	if logTail > 0 {
		path += "?tail=" + strconv.Itoa(logTail)
	}

	var resp api.LogResponse
	if err := newClientFromFlags().do(cmd.Context(), http.MethodGet, path, nil, &resp); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(resp.Lines) == 0 {
		fmt.Fprintln(out, "(log is empty)")
		return nil
	}
	for _, line := range resp.Lines {
		fmt.Fprintln(out, line)
	}
	return nil
}

func runStatus(cmd *cobra.Command, _ []string) error {
	var view status.View
	if err := newClientFromFlags().do(cmd.Context(), http.MethodGet, "/status", nil, &view); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", view.Icon, view.Text)
	fmt.Fprintln(out, view.Tooltip)
	if view.Warning != "" {
		fmt.Fprintf(out, "\n%s\n", view.Warning)
	}
	return nil
}

func printItems(out io.Writer, items []status.MenuItem) {
	for _, it := range items {
		fmt.Fprintf(out, "  %-14s %-20s %s\n", it.Action, it.Label, it.Description)
	}
}

func printState(out io.Writer, s domain.BurnState) {
	mode := "off"
	switch s.Phase() {
	case domain.PhaseIdle:
		mode = "on"
	case domain.PhaseBurning:
		mode = "burning"
	}
	fmt.Fprintf(out, "Burn mode: %s | Session: %d | All-time: %d | Interval: %dm | Model: %s\n",
		mode, s.SessionCount, s.AllTimeCount, s.IntervalMinutes, s.ModelLabel())
}
