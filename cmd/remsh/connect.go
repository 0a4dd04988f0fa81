package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"

	"pkt.systems/remsh"
	"pkt.systems/remsh/internal/appconfig"
)

func newConnectCmd() *cobra.Command {
	var cfgPath string
	var logFile string
	cmd := &cobra.Command{
		Use:   "connect [url]",
		Short: "Connect to a remsh executor",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := appconfig.Load(cfgPath)
			if err != nil {
				return err
			}
			url := cfg.Client.URL
			if len(args) == 1 {
				url = args[0]
			}
			client, err := remsh.NewClient(remsh.ClientConfig{
				URL:     url,
				Lexicon: cfg.Client.Lexicon,
			})
			if err != nil {
				return err
			}

			// The session holds the tty in raw mode, so logging to
			// stderr would garble the display. Telemetry goes to
			// --log-file when given and is dropped otherwise.
			var logDst io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				logDst = f
			}
			logger := pslog.LoggerFromEnv(
				pslog.WithEnvWriter(logDst),
				pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, NoColor: true}),
			)
			ctx := pslog.ContextWithLogger(cmd.Context(), logger)
			return client.Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "path to config file")
	cmd.Flags().StringVar(&logFile, "log-file", "", "append session logs to this file")
	return cmd
}
