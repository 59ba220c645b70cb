package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/storyline/pkg/fonts"
	"github.com/matzehuels/storyline/pkg/mockup"
	"github.com/matzehuels/storyline/pkg/timeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for storyline.

To load completions:

Bash:
  $ source <(storyline completion bash)

Zsh:
  $ storyline completion zsh > "${fpath[1]}/_storyline"

Fish:
  $ storyline completion fish | source

PowerShell:
  PS> storyline completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// documentArgs completes timeline document paths.
func documentArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"toml", "yaml", "yml", "json"}, cobra.ShellCompDirectiveFilterFileExt
}

// registerFormatCompletion completes --format with the mockup format slugs.
func registerFormatCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return mockup.Slugs(), cobra.ShellCompDirectiveNoFileComp
	})
}

// registerGroupByCompletion completes --group-by.
func registerGroupByCompletion(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("group-by", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{string(timeline.ByTitle), string(timeline.ByPlace)}, cobra.ShellCompDirectiveNoFileComp
	})
}

// styleFieldArgs completes style field names, and font names after font_family=.
func styleFieldArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return []string{"toml", "yaml", "yml", "json"}, cobra.ShellCompDirectiveFilterFileExt
	}
	if toComplete == timeline.FieldFontFamily+"=" {
		out := make([]string, len(fonts.Families))
		for i, f := range fonts.Families {
			out[i] = toComplete + f.Name()
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
	out := make([]string, 0, len(timeline.Fields))
	for _, f := range timeline.Fields {
		out = append(out, f+"=")
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
