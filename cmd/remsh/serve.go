package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"pkt.systems/remsh"
	"pkt.systems/remsh/httpapi"
	"pkt.systems/remsh/internal/appconfig"
)

func newServeCmd() *cobra.Command {
	var cfgPath string
	var addr string
	var rootDir string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the remsh executor",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if rootDir != "" {
				cfg.Server.RootDir = rootDir
			}
			server := remsh.NewServer(remsh.ServerConfig{
				HTTP: httpapi.Config{
					Addr:    cfg.Server.Addr,
					RootDir: cfg.Server.RootDir,
				},
			})
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			logger.Info("http server listening", "addr", cfg.Server.Addr)
			return server.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address override")
	cmd.Flags().StringVar(&rootDir, "root", "", "command root directory override")
	return cmd
}
