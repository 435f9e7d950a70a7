// Package analyze implements the analyze command: one spending analysis from the terminal.
package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"fjacquet/spending-coach/cmd/root"
	"fjacquet/spending-coach/internal/api"
	"fjacquet/spending-coach/internal/coach"
	"fjacquet/spending-coach/internal/common"
	"fjacquet/spending-coach/internal/container"
	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/ui"

	"github.com/spf13/cobra"
)

// Options holds the analyze command flags.
type Options struct {
	Input       string
	Description string
	Goal        string
	Export      string
	JSON        bool
}

var opts Options

// Cmd represents the analyze command
var Cmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze transactions and get savings advice",
	Long: `Analyze reads transactions, totals expenses and income per category and asks
the configured model for a spending summary and savings suggestions toward a goal.

Input is either "date, description, amount" lines, a JSON array of
{date, description, amount} records, or a CSV file with Date, Description and
Amount columns. Without --input, lines are read from stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Run(cmd.Context(), c, opts, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Transaction file (.csv, .json or text lines); stdin when empty or -")
	Cmd.Flags().StringVarP(&opts.Description, "description", "d", "", "Short description of yourself")
	Cmd.Flags().StringVarP(&opts.Goal, "goal", "g", "", "Financial goal")
	Cmd.Flags().StringVarP(&opts.Export, "export", "e", "", "Write categorized transactions to this CSV file")
	Cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the analysis as JSON")
}

// Run performs one analysis and writes the result to out.
func Run(ctx context.Context, c *container.Container, o Options, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := c.GetLogger().WithField(logging.FieldOperation, "analyze")
	delimiter := common.Delimiter(c.GetConfig().CSV.Delimiter)

	data, err := LoadTransactionData(o.Input, in, delimiter, logger)
	if err != nil {
		return err
	}

	resp, err := c.GetCoach().Analyze(ctx, coach.AnalysisRequest{
		UserDescription: o.Description,
		TransactionData: data,
		FinancialGoal:   o.Goal,
	})
	if err != nil {
		return err
	}

	if o.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(api.NewAnalyzeResponse(resp)); err != nil {
			return fmt.Errorf("failed to encode analysis: %w", err)
		}
	} else {
		if _, err := io.WriteString(out, ui.RenderAnalysis(resp)); err != nil {
			return fmt.Errorf("failed to write analysis: %w", err)
		}
	}

	if o.Export != "" {
		rows := c.GetAggregator().Categorize(resp.Transactions)
		if err := common.ExportCategorizedCSV(rows, o.Export, delimiter, logger); err != nil {
			return fmt.Errorf("failed to export transactions: %w", err)
		}
	}
	return nil
}

// LoadTransactionData turns the input into the transactionData payload. CSV
// files become a record array; other content is passed through as a record
// array when it looks like JSON and as a string of lines otherwise.
func LoadTransactionData(input string, stdin io.Reader, delimiter rune, logger logging.Logger) (json.RawMessage, error) {
	if strings.EqualFold(filepath.Ext(input), ".csv") {
		return common.ReadTransactionFile(input, delimiter, logger)
	}

	var (
		content []byte
		err     error
	)
	if input == "" || input == "-" {
		content, err = io.ReadAll(stdin)
	} else {
		content, err = os.ReadFile(input) // #nosec G304 -- path is supplied by the CLI user
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}

	trimmed := bytes.TrimSpace(content)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		return json.RawMessage(trimmed), nil
	}

	data, err := json.Marshal(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to encode transactions: %w", err)
	}
	return data, nil
}
