package cmd

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"griddle/internal/api"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	orderAddress string
	orderStream  bool
	orderQuiet   bool
)

// orderCmd submits one order to a running griddle instance.
var orderCmd = &cobra.Command{
	Use:   "order <text>...",
	Short: "Submit an order and wait for the kitchen to finish it",
	Long: `Submits a free-text order to a running griddle instance and prints the
kitchen's response.

By default the command blocks until the order is terminal. With
--stream the response arrives word by word as the kitchen produces it.

Examples:
  griddle order bacon cheeseburger with waffle fries
  griddle order --stream "double cheeseburger and a chocolate shake"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runOrder,
}

func runOrder(cmd *cobra.Command, args []string) error {
	orderText := strings.Join(args, " ")
	if orderStream {
		return submitStreamed(cmd, orderText)
	}
	return submitBlocking(cmd, orderText)
}

func submitBlocking(cmd *cobra.Command, orderText string) error {
	out := cmd.OutOrStdout()

	var s *spinner.Spinner
	if !orderQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " The kitchen is working on your order..."
		s.Start()
	}

	resp, err := postOrder(cmd, "/api/order", orderText)
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", orderAddress, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("order rejected (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var decoded struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("unexpected response: %w", err)
	}
	fmt.Fprintln(out, decoded.Response)
	return nil
}

func submitStreamed(cmd *cobra.Command, orderText string) error {
	out := cmd.OutOrStdout()

	resp, err := postOrder(cmd, "/api/order/stream", orderText)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", orderAddress, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("order rejected (%d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if orderID := resp.Header.Get("X-Order-Id"); orderID != "" && !orderQuiet {
		fmt.Fprintln(out, text.FgHiBlack.Sprintf("order id: %s", orderID))
	}

	// Print chunks as they arrive; the sentinel line marks the end.
	reader := bufio.NewReader(resp.Body)
	for {
		chunk, err := reader.ReadString('\n')
		line := strings.TrimRight(chunk, "\n")
		if line == api.StreamSentinel {
			break
		}
		fmt.Fprint(out, chunk)
		if err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
	}
	fmt.Fprintln(out)
	return nil
}

func postOrder(cmd *cobra.Command, path, orderText string) (*http.Response, error) {
	payload, err := json.Marshal(map[string]string{"order": orderText})
	if err != nil {
		return nil, err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		orderAddress+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return http.DefaultClient.Do(req)
}

func init() {
	rootCmd.AddCommand(orderCmd)

	orderCmd.Flags().StringVar(&orderAddress, "address", "http://localhost:8090", "Base URL of the griddle API")
	orderCmd.Flags().BoolVar(&orderStream, "stream", false, "Stream the response as the kitchen produces it")
	orderCmd.Flags().BoolVar(&orderQuiet, "quiet", false, "Only print the kitchen's response")
}
