package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the scheduler daemon",
		Long: `Run the scheduler in the foreground: recover instances missed while the
process was down, then generate and execute on a fixed interval until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigCh)
			go func() {
				select {
				case sig := <-sigCh:
					app.log.Info().Str("signal", sig.String()).Msg("shutting down")
					cancel()
				case <-ctx.Done():
				}
			}()

			fmt.Fprintln(cmd.OutOrStdout(), "Scheduler running. Press Ctrl-C to stop.")
			return app.sched.Run(ctx, app.cfg.Scheduler.TickInterval)
		},
	}
}
