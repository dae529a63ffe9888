package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nudge/domain/suggestion"
)

// newSuggestCmd creates the suggest command.
func (a *App) newSuggestCmd() *cobra.Command {
	var toolsOnly bool

	cmd := &cobra.Command{
		Use:   "suggest [utterance]",
		Short: "Print tool-selection guidance for a request",
		Long: `Classify a request by keyword and print the tool-selection prompt that
would be shown to the reasoning engine.

Examples:
  nudge suggest "search for the latest Go release"
  nudge suggest --tools "打开网站并运行代码"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			utterance := ""
			if len(args) > 0 {
				utterance = args[0]
			}

			result := suggestion.DefaultClassifier().Suggest(utterance)
			if toolsOnly {
				_, _ = fmt.Fprintln(a.stdout, strings.Join(result.Tools, ", "))
				return nil
			}
			_, _ = fmt.Fprint(a.stdout, result.Prompt)
			return nil
		},
	}

	cmd.Flags().BoolVar(&toolsOnly, "tools", false, "Print only the suggested tool names")

	return cmd
}
