package cmd

import (
	"sync"

	"github.com/spf13/cobra"

	"github.com/loog-project/auditlog/internal/store"
)

var (
	cachedObjectKeys []string
	objectKeysOnce   sync.Once
)

var completionCmd = &cobra.Command{
	Use:       "completion [SHELL]",
	Short:     "Prints shell completion scripts",
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			_ = cmd.Root().GenBashCompletion(cmd.OutOrStdout())
		case "zsh":
			_ = cmd.Root().GenZshCompletion(cmd.OutOrStdout())
		case "fish":
			_ = cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
		case "powershell":
			_ = cmd.Root().GenPowerShellCompletion(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// loadObjectKeys returns every object key with at least one entry.
func loadObjectKeys() ([]string, error) {
	entries, err := openStore(false)
	if err != nil {
		return nil, err
	}
	defer entries.Close()

	var keys []string
	err = entries.Walk(func(entry *store.Entry) bool {
		// entries are grouped by object
		if len(keys) == 0 || keys[len(keys)-1] != entry.ObjectKey {
			keys = append(keys, entry.ObjectKey)
		}
		return true
	})
	return keys, err
}

func objectKeyCompletion(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	objectKeysOnce.Do(func() {
		if keys, err := loadObjectKeys(); err == nil {
			cachedObjectKeys = keys
		}
	})
	return cachedObjectKeys, cobra.ShellCompDirectiveNoFileComp
}
