// Command hearthd runs the loopback WebSocket server that multiplexes PTY
// sessions, voice transcription, and LLM prompts for one local client.
// Grounded on the teacher's cmd/wtd/main.go (cobra root command,
// signal.NotifyContext + errCh race for graceful shutdown).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/hearthd/hearthd/internal/audiocapture"
	"github.com/hearthd/hearthd/internal/config"
	"github.com/hearthd/hearthd/internal/hlog"
	"github.com/hearthd/hearthd/internal/llmproxy"
	"github.com/hearthd/hearthd/internal/router"
	"github.com/hearthd/hearthd/internal/transport"
)

// version is set at release time; left as "dev" for local builds.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "hearthd",
		Short: "local PTY/voice/LLM session daemon",
	}

	run := runCmd()
	root.RunE = run.RunE
	root.Flags().AddFlagSet(run.Flags())

	root.AddCommand(run)
	root.AddCommand(devicesCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "start the session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			bindAddr, _ := cmd.Flags().GetString("addr")

			mgr := config.NewManager()
			if err := mgr.Load(configPath); err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			cfg := mgr.Current()
			if err := hlog.Init(cfg.LogLevel, cfg.LogFile); err != nil {
				return fmt.Errorf("init logging: %w", err)
			}
			if !cmd.Flags().Changed("addr") && cfg.BindPort != 0 {
				bindAddr = fmt.Sprintf("127.0.0.1:%d", cfg.BindPort)
			}

			llmConfigs := make(map[string]llmproxy.ClientConfig, len(cfg.LLMProviders))
			for name, pc := range cfg.LLMProviders {
				llmConfigs[name] = llmproxy.ClientConfig{APIKey: pc.APIKey, BaseURL: pc.BaseURL}
			}
			llmClient := llmproxy.NewClient(llmConfigs)

			rt := router.New(mgr, llmClient)
			srv := &transport.Server{OnConnect: rt.Handle}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			go func() {
				if werr := mgr.Watch(ctx, configPath); werr != nil {
					hlog.Log.Warn("config watch ended", "err", werr)
				}
			}()

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(bindAddr) }()

			addr, ok := waitForAddr(srv, 5*time.Second)
			if !ok {
				return fmt.Errorf("server failed to bind")
			}
			printHandshake(addr)

			select {
			case <-ctx.Done():
				hlog.Log.Info("shutting down")
				return srv.Close()
			case err := <-errCh:
				return err
			}
		},
	}

	cmd.Flags().String("config", "hearthd.yaml", "config file path")
	cmd.Flags().String("addr", "127.0.0.1:0", "listen address")
	return cmd
}

func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "list capture devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := audiocapture.ListInputDevices()
			if err != nil {
				return err
			}
			for _, d := range devices {
				marker := ""
				if d.IsDefault {
					marker = " (default)"
				}
				fmt.Printf("%s%s\n", d.Name, marker)
			}
			return nil
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(version)
			return nil
		},
	}
}

// waitForAddr polls until the server has bound a listener (Start runs its
// own goroutine and may not have called net.Listen yet).
func waitForAddr(srv *transport.Server, timeout time.Duration) (net.Addr, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if a := srv.Addr(); a != nil {
			return a, true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil, false
}

// printHandshake emits the single-line JSON {"port":...,"pid":...} the
// client scrapes from stdout to learn which loopback port to dial.
func printHandshake(addr net.Addr) {
	_, portStr, err := net.SplitHostPort(addr.String())
	if err != nil {
		hlog.Log.Error("could not parse bound address", "addr", addr.String(), "err", err)
		return
	}
	var port int
	fmt.Sscanf(portStr, "%d", &port)

	handshake, _ := json.Marshal(map[string]any{
		"port": port,
		"pid":  os.Getpid(),
	})
	fmt.Println(string(handshake))
}
