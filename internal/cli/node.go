package cli

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mattnappo/harbor"
)

var nodeCmd = &cobra.Command{
	Use:   "node",
	Short: "Start a harbor node",
	Long:  "Start a node: bootstrap the peer table, open the listener, and serve the protocol",
	RunE:  runNode,
}

var (
	port          int
	listenIP      string
	bootstrapFile string
	maxPeers      int
	sendPings     bool
	metricsAddr   string
)

func init() {
	nodeCmd.Flags().IntVar(&port, "port", 3300, "Port for this node to listen on")
	nodeCmd.Flags().StringVar(&listenIP, "ip", "", "IPv4 address to listen on (discovered when empty)")
	nodeCmd.Flags().StringVar(&bootstrapFile, "bootstrap-file", "bootstrap.txt", "File of ip:port bootstrap peers, one per line")
	nodeCmd.Flags().IntVar(&maxPeers, "max-peers", harbor.DefaultConfig().MaxPeers, "Maximum number of peers to remember")
	nodeCmd.Flags().BoolVar(&sendPings, "ping", false, "Ping every bootstrapped peer after startup")
	nodeCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Address to serve /metrics and /peers on (disabled when empty)")

	rootCmd.AddCommand(nodeCmd)
}

func runNode(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg := harbor.DefaultConfig()
	cfg.Port = port
	cfg.MaxPeers = maxPeers
	cfg.Logger = log
	if listenIP != "" {
		ip := net.ParseIP(listenIP)
		if ip == nil || ip.To4() == nil {
			return fmt.Errorf("--ip %q is not an IPv4 address", listenIP)
		}
		cfg.IP = ip.To4()
	}

	reg := prometheus.NewRegistry()
	cfg.Metrics = harbor.NewMetrics(reg, "harbor")

	peer, err := harbor.NewPeer(cfg)
	if err != nil {
		return err
	}
	log.Info("node identity", zap.String("id", peer.Identity().ID()))

	// Seed the table before the listener opens, so no inbound request can
	// race the bootstrap pass.
	if _, err := peer.BootstrapFile(bootstrapFile); err != nil {
		return err
	}

	if err := peer.Start(); err != nil {
		return err
	}

	if sendPings {
		if err := peer.SendPings(); err != nil {
			log.Warn("startup ping pass had failures", zap.Error(err))
		}
	}

	if metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		mux.Handle("/peers", peer)
		go func() {
			if err := http.ListenAndServe(metricsAddr, mux); err != nil {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")
	return peer.Close()
}
