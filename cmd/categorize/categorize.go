// Package categorize handles transaction categorization commands
package categorize

import (
	"fmt"
	"io"
	"strings"

	"fjacquet/spending-coach/cmd/root"
	"fjacquet/spending-coach/internal/container"
	"fjacquet/spending-coach/internal/logging"
	"fjacquet/spending-coach/internal/ui"

	"github.com/spf13/cobra"
)

// WriteRules is the path the active rule table is written to, if set.
var WriteRules string

// Cmd represents the categorize command
var Cmd = &cobra.Command{
	Use:   "categorize [description...]",
	Short: "Categorize transaction descriptions using the keyword rules",
	Long: `Categorize prints the category each description falls into under the active
keyword rules (built-in, or the file given with --rules). With --write-rules the
active rule table is written out as YAML, ready to be edited and loaded back.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		return Run(c, args, WriteRules, cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&WriteRules, "write-rules", "w", "", "Write the active rules to this YAML file")
}

// Run categorizes each description and optionally dumps the rule table.
func Run(c *container.Container, descriptions []string, writeRules string, out io.Writer) error {
	if len(descriptions) == 0 && writeRules == "" {
		return fmt.Errorf("at least one description or --write-rules is required")
	}

	cat := c.GetCategorizer()
	for _, description := range descriptions {
		if strings.TrimSpace(description) == "" {
			continue
		}
		category := cat.Categorize(description)
		c.GetLogger().Debug("Transaction categorized",
			logging.F(logging.FieldCategory, category),
			logging.F("description", description))
		if _, err := io.WriteString(out, ui.RenderCategory(description, category)); err != nil {
			return err
		}
	}

	if writeRules != "" {
		if err := c.GetStore().SaveRules(writeRules, cat.Rules()); err != nil {
			return fmt.Errorf("failed to write rules: %w", err)
		}
		c.GetLogger().Info("Category rules written",
			logging.F(logging.FieldOutputFile, writeRules),
			logging.F(logging.FieldCount, len(cat.Rules())))
	}
	return nil
}
