package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"griddle/internal/api"
	gstrings "griddle/pkg/strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	historyAddress string
	historyOutput  string
)

// historyCmd fetches and renders the order history of a running
// griddle instance.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the order history, newest first",
	Long: `Fetches the order history from a running griddle instance and renders
it as a table. Use --output json or --output yaml for machine-readable
output.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		historyAddress+"/api/order-history", nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", historyAddress, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("history request failed (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var history []api.Order
	if err := json.Unmarshal(body, &history); err != nil {
		return fmt.Errorf("unexpected response: %w", err)
	}

	out := cmd.OutOrStdout()
	switch historyOutput {
	case "json":
		encoded, err := json.MarshalIndent(history, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(encoded))
		return nil
	case "yaml":
		encoded, err := yaml.Marshal(history)
		if err != nil {
			return err
		}
		fmt.Fprint(out, string(encoded))
		return nil
	case "table":
		renderHistoryTable(out, history)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json, or yaml)", historyOutput)
	}
}

func renderHistoryTable(out io.Writer, history []api.Order) {
	if len(history) == 0 {
		fmt.Fprintf(out, "%s %s\n", text.FgYellow.Sprint("📋"), text.FgYellow.Sprint("No orders yet"))
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("ID"),
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("SUBMITTED"),
		text.FgHiCyan.Sprint("ORDER"),
		text.FgHiCyan.Sprint("RESULT"),
	})

	for _, order := range history {
		t.AppendRow(table.Row{
			shortID(order.ID),
			colorStatus(order.Status),
			order.SubmittedAt.Format(time.TimeOnly),
			gstrings.TruncateOneLine(order.Text, 40),
			gstrings.TruncateOneLine(order.Result, 60),
		})
	}
	t.Render()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func colorStatus(status api.OrderStatus) string {
	switch status {
	case api.OrderStatusCompleted:
		return text.FgGreen.Sprint(status)
	case api.OrderStatusFailed:
		return text.FgRed.Sprint(status)
	default:
		return text.FgYellow.Sprint(status)
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyAddress, "address", "http://localhost:8090", "Base URL of the griddle API")
	historyCmd.Flags().StringVarP(&historyOutput, "output", "o", "table", "Output format: table, json, or yaml")
}
