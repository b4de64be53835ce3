package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"vinestore/internal/daemonctl"
	"vinestore/internal/devserver"
	"vinestore/internal/logging"
	"vinestore/internal/store"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the development object-store daemon",
	}
	cmd.AddCommand(newDaemonRunCommand(ctx))
	cmd.AddCommand(newDaemonStartCommand(ctx))
	cmd.AddCommand(newDaemonStopCommand(ctx))
	cmd.AddCommand(newDaemonStatusCommand(ctx))
	return cmd
}

// daemon run keeps the dev daemon in the foreground, mainly for debugging
// the wire protocol with a visible log stream.
func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the development daemon in the foreground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			socket, err := ctx.socketPath()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg, "vinestored.log")
			if err != nil {
				return err
			}

			srv, err := devserver.NewServer(cmd.Context(), socket, devserver.Options{
				PersistDB:        cfg.Dev.PersistDB,
				AdvertiseVersion: cfg.Dev.AdvertiseVersion,
			}, logger)
			if err != nil {
				return err
			}
			defer srv.Close()
			srv.Serve()

			logger.Info("development daemon ready", logging.String(logging.FieldSocket, socket))
			select {
			case <-cmd.Context().Done():
			case <-srv.Done():
			}
			return nil
		},
	}
}

func newDaemonStartCommand(ctx *commandContext) *cobra.Command {
	var waitTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Launch the development daemon in the background",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			socket, err := ctx.socketPath()
			if err != nil {
				return err
			}
			opts, err := ctx.clientOptions()
			if err != nil {
				return err
			}

			executable, err := daemonctl.DaemonExecutable()
			if err != nil {
				return err
			}
			launchOpts := daemonctl.LaunchOptions{SocketPath: socket}
			if ctx.configFlag != nil {
				launchOpts.ConfigPath = *ctx.configFlag
			}
			if err := daemonctl.Launch(executable, launchOpts); err != nil {
				return err
			}

			client, err := daemonctl.WaitForClient(cmd.Context(), socket, waitTimeout, opts)
			if err != nil {
				return err
			}
			defer client.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "daemon ready on %s (instance %s)\n", socket, client.InstanceID())
			return nil
		},
	}

	cmd.Flags().DurationVar(&waitTimeout, "wait", 10*time.Second, "How long to wait for the daemon socket")
	return cmd
}

func newDaemonStopCommand(ctx *commandContext) *cobra.Command {
	var waitTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the development daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			socket, err := ctx.socketPath()
			if err != nil {
				return err
			}
			opts, err := ctx.clientOptions()
			if err != nil {
				return err
			}

			err = ctx.withClient(cmd.Context(), func(client *store.Client) error {
				return client.Shutdown(cmd.Context())
			})
			if err != nil {
				if errors.Is(err, store.ErrConnection) {
					return fmt.Errorf("%w on %s", daemonctl.ErrDaemonNotRunning, socket)
				}
				return err
			}

			if err := daemonctl.WaitForShutdown(cmd.Context(), socket, waitTimeout, opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "daemon on %s stopped\n", socket)
			return nil
		},
	}

	cmd.Flags().DurationVar(&waitTimeout, "wait", 10*time.Second, "How long to wait for the daemon to stop")
	return cmd
}

func newDaemonStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the daemon socket answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			socket, err := ctx.socketPath()
			if err != nil {
				return err
			}
			opts, err := ctx.clientOptions()
			if err != nil {
				return err
			}
			alive, err := daemonctl.ProcessInfo(cmd.Context(), socket, opts)
			if err != nil {
				return err
			}
			if ctx.jsonOutput() {
				if err := printJSON(cmd.OutOrStdout(), map[string]any{"socket": socket, "reachable": alive}); err != nil {
					return err
				}
				if !alive {
					return fmt.Errorf("%w on %s", daemonctl.ErrDaemonNotRunning, socket)
				}
				return nil
			}
			if !alive {
				return fmt.Errorf("%w on %s", daemonctl.ErrDaemonNotRunning, socket)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "daemon answering on %s\n", socket)
			return nil
		},
	}
}
