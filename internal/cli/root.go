package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var Verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "verbose output")
}

var rootCmd = &cobra.Command{
	Use:   "harbor",
	Short: "Harbor P2P Node",
	Long:  "A peer-to-peer overlay node with bootstrap-then-gossip membership",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger. Development encoding under
// --verbose, production JSON otherwise.
func newLogger() (*zap.Logger, error) {
	if Verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
