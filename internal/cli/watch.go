package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/burner/internal/domain"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream state changes until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, _ []string) error {
	resp, err := newClientFromFlags().stream(cmd.Context(), "/events")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	out := cmd.OutOrStdout()
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data: ")
		if !ok {
			continue
		}
		var state domain.BurnState
		if err := json.Unmarshal([]byte(data), &state); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		printState(out, state)
	}
	if err := scanner.Err(); err != nil && cmd.Context().Err() == nil {
		return fmt.Errorf("read events: %w", err)
	}
	return nil
}
