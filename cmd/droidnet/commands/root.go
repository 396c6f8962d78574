// Package commands implements the CLI commands for the droidnet build orchestrator.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/droidnet/internal/app"
	"go.trai.ch/droidnet/internal/build"
	"go.trai.ch/droidnet/internal/core/domain"
)

// CLI represents the command line interface for droidnet.
type CLI struct {
	app          Application
	rootCmd      *cobra.Command
	configureLog func(level domain.LogLevel, jsonOutput bool)
}

// Application represents the application logic interface.
type Application interface {
	Run(ctx context.Context, targetNames []string, opts app.RunOptions) error
	Watch(ctx context.Context, targetNames []string, opts app.WatchOptions) error
	Plan(opts app.PlanOptions) (*app.PlanView, error)
	Clean(ctx context.Context, opts app.CleanOptions) error
}

// Option configures the CLI.
type Option func(*CLI)

// WithLogConfigurer receives the global --log-level and --log-json flags before any command runs.
func WithLogConfigurer(fn func(level domain.LogLevel, jsonOutput bool)) Option {
	return func(c *CLI) {
		c.configureLog = fn
	}
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "droidnet",
		Short:         "Weave a Xamarin runtime project into an Android host build",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Path to droidnet.yaml (default: search upwards from the working directory)")
	flags.String("log-level", "", "Log level: debug, info, lifecycle, warn, quiet or error")
	flags.Bool("log-json", false, "Emit logs as JSON")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentPreRunE = c.configureLogging

	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newWatchCmd())
	rootCmd.AddCommand(c.newPlanCmd())
	rootCmd.AddCommand(c.newCleanCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

func (c *CLI) configureLogging(cmd *cobra.Command, _ []string) error {
	raw, _ := cmd.Flags().GetString("log-level")
	level, err := domain.ParseLogLevel(raw, domain.LogLevelLifecycle)
	if err != nil {
		return err
	}
	jsonOutput, _ := cmd.Flags().GetBool("log-json")
	if c.configureLog != nil {
		c.configureLog(level, jsonOutput)
	}
	return nil
}

func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString("config")
	return path
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
