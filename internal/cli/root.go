package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"budget/internal/log"
)

var version = "dev"

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	version = v
}

// CLI holds the output streams and logger shared by every command.
type CLI struct {
	out    io.Writer
	errOut io.Writer
	logger *log.Logger
}

// New returns a CLI writing results to out and logs to errOut.
func New(out, errOut io.Writer) *CLI {
	return &CLI{out: out, errOut: errOut}
}

// RootCommand builds the budgetctl command tree.
func (c *CLI) RootCommand() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Budget tracker maintenance and chart tools",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			LoadEnvFile()
			c.logger = SetupLogger(c.errOut, logLevel).WithComponent(log.ComponentCLI)
		},
	}
	root.SetOut(c.out)
	root.SetErr(c.errOut)
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(c.donutCommand())
	root.AddCommand(c.migrateCommand())

	return root
}

// Execute runs the command tree with args, reporting failures on errOut.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(c.errOut, "Error:", err)
		return err
	}
	return nil
}
