package cli

import (
	"github.com/spf13/cobra"

	"tailsift/internal/config"
)

// Options contains the parsed command-line arguments
type Options struct {
	ConfigPath   string
	FilterPath   string
	Path         string
	Contains     []string
	Regexps      []string
	Excludes     []string
	ContextLines int
	Version      bool
	Help         bool

	contextSet bool
}

// Parse parses command-line args and returns an Options struct
func Parse(args []string) (*Options, error) {
	result := &Options{
		ConfigPath:   config.ConfigFile,
		ContextLines: -1,
	}

	root := buildRootCommand(result)
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		return nil, err
	}

	result.contextSet = result.ContextLines >= 0

	return result, nil
}

// buildRootCommand creates the root cobra command
func buildRootCommand(result *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tailsift [file]",
		Short: "Reactive log-line filtering over a growing file or stdin",
		Long: `Tailsift follows a log file (or reads stdin) and maintains a filtered
view through a hierarchical filter expression. New lines are folded in
incrementally; filter edits trigger a debounced full recomputation.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			if len(args) == 1 {
				result.Path = args[0]
			}
		},
	}

	cmd.Flags().StringVar(&result.ConfigPath, "config", config.ConfigFile, "Path to the configuration file")
	cmd.Flags().StringVarP(&result.FilterPath, "filter", "f", "", "Path to a persisted filter tree (YAML)")
	cmd.Flags().StringArrayVarP(&result.Contains, "contains", "c", nil, "Keep lines containing the value (repeatable, OR-combined)")
	cmd.Flags().StringArrayVarP(&result.Regexps, "regexp", "e", nil, "Keep lines matching the pattern (repeatable, OR-combined)")
	cmd.Flags().StringArrayVarP(&result.Excludes, "exclude", "x", nil, "Drop lines containing the value (repeatable)")
	cmd.Flags().IntVarP(&result.ContextLines, "context", "C", -1, "Context lines around each match")
	cmd.Flags().BoolVarP(&result.Version, "version", "v", false, "Show version information")

	defaultHelp := cmd.HelpFunc()
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		result.Help = true
		defaultHelp(c, args)
	})

	return cmd
}

// Apply folds flag values into the loaded configuration; flags win
func (o *Options) Apply(cfg *config.Config) {
	if o.Path != "" {
		cfg.Source.Path = o.Path
	}

	if o.FilterPath != "" {
		cfg.Filter.Path = o.FilterPath
	}

	if o.contextSet {
		cfg.Pipeline.ContextLines = o.ContextLines
	}
}
