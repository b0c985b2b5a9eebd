package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mattnappo/harbor/wire"
)

var peersCmd = &cobra.Command{
	Use:   "peers <ip:port>",
	Short: "Print a node's membership table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		res, err := sendRequest(args[0], wire.NewRequest(wire.MsgPeerStore), log)
		if err != nil {
			return err
		}
		if res.Type != wire.MsgPeerStoreResp {
			return fmt.Errorf("unexpected response %q", res.Type)
		}
		fmt.Printf("%d peers known to %s\n", len(res.Peers), args[0])
		for _, p := range res.Peers {
			fmt.Printf("%s:%d\t%s\n", p.IP, p.Port, p.ID)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(peersCmd)
}
