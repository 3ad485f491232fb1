// Package cli implements the reshard command-line driver.
package cli

import (
	"github.com/spf13/cobra"
)

// CLIClient handles command line parsing and execution.
type CLIClient interface {
	Exec() error
}

// Implements CLIClient - basic
type simpleCLIClient struct {
	rootCmd  *cobra.Command
	logLevel string
}

func (c *simpleCLIClient) Exec() error {
	return c.rootCmd.Execute()
}

func NewSimpleCLIClient() (CLIClient, error) {
	c := &simpleCLIClient{}

	c.rootCmd = &cobra.Command{
		Use:   "reshard",
		Short: "reshard drives a two-phase data migration job",
		Run:   func(*cobra.Command, []string) {},
	}
	c.rootCmd.PersistentFlags().StringVar(&c.logLevel, "log_level", "info", "Log everything at this level and above (error|info|debug)")

	c.addCmd(&runJobCmd{})

	return c, nil
}

func (c *simpleCLIClient) addCmd(cmd cmd) {
	cobraCmd := cmd.registerFlags()
	cobraCmd.RunE = func(innerCmd *cobra.Command, args []string) error {
		return cmd.run(c, innerCmd, args)
	}
	c.rootCmd.AddCommand(cobraCmd)
}

type cmd interface {
	registerFlags() *cobra.Command
	run(cl *simpleCLIClient, cmd *cobra.Command, args []string) error
}
