package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ctxweave/internal/config"
	"ctxweave/internal/host"
	"ctxweave/internal/logging"
	"ctxweave/internal/provider"
)

var (
	// Global flags
	cfgPath      string
	verbose      bool
	debuggerURL  string
	workspaceDir string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "ctxweave",
	Short: "ctxweave - workspace context injection for browser chat surfaces",
	Long: `ctxweave attaches to a browser over the DevTools protocol, watches
configured chat pages, and weaves workspace content (files, folders, file
trees, diagnostics) into their input surfaces as tagged context blocks.

Type @ in a watched input to open the picker; inserted blocks stay tracked
until they are removed or hand-edited away.

Run without arguments to start watching.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			cfg = config.DefaultConfig()
		} else {
			var err error
			cfg, err = config.Load(cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
		}
		if debuggerURL != "" {
			cfg.Browser.DebuggerURL = debuggerURL
		}
		if verbose {
			cfg.Logging.Debug = true
		}
		if err := logging.Init(cfg.Logging.Debug, cfg.Logging.JSON); err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd.Context())
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to the browser and watch configured hosts",
	Long: `Connects to the browser at the configured debugger URL (launching one
when none is set) and attaches to every open page whose hostname matches a
configured rule. Blocks until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd.Context())
	},
}

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List the configured host rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "HOST\tSURFACE\tLOCATOR")
		for _, r := range cfg.Hosts {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.HostSuffix, r.Surface, r.Locator)
		}
		return tw.Flush()
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgPath); err == nil {
			return fmt.Errorf("refusing to overwrite existing %s", cfgPath)
		}
		if err := config.DefaultConfig().Save(cfgPath); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", cfgPath)
		return nil
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Exercise the trigger/insert/remove loop against an in-memory surface",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDemo()
	},
}

func runWatch(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prov, err := provider.NewWorkspace(workspaceDir)
	if err != nil {
		return err
	}

	w := host.New(cfg, prov, logPresenter{})
	if err := w.Connect(ctx); err != nil {
		return err
	}

	cw, err := config.NewWatcher(cfgPath, func(next config.Config) {
		logging.Get(logging.CategoryConfig).Infof("configuration reloaded from %s", cfgPath)
	})
	if err == nil {
		if err := cw.Start(); err == nil {
			defer cw.Stop()
		}
	}

	logging.Get(logging.CategoryHost).Infof("watching %d host rules", len(cfg.Hosts))
	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func defaultConfigPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "ctxweave", "config.yaml")
	}
	return "ctxweave.yaml"
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultConfigPath(), "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&debuggerURL, "debugger-url", "", "Browser DevTools websocket URL (overrides config)")
	rootCmd.PersistentFlags().StringVarP(&workspaceDir, "workspace", "w", ".", "Workspace root to serve content from")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(demoCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
