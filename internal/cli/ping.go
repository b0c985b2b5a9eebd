package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattnappo/harbor/wire"
)

var pingCmd = &cobra.Command{
	Use:   "ping <ip:port>",
	Short: "Ping a running node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		res, err := sendRequest(args[0], wire.NewRequest(wire.MsgPing), log)
		if err != nil {
			return err
		}
		if res.Type != wire.MsgPong {
			return fmt.Errorf("unexpected response %q", res.Type)
		}
		fmt.Printf("pong from %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
