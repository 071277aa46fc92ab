package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTickCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run one generation and execution pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			if _, err := app.sched.GenerateAll(ctx); err != nil {
				return err
			}
			executed, err := app.sched.RunTick(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Executed %d scheduled transaction(s)\n", executed)
			return nil
		},
	}
}

func newGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Materialize upcoming instances for every recurring template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.sched.GenerateAll(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Templates: %d, created: %d instance(s), %d past-due executed\n",
				res.Templates, res.Created, res.PastExecuted)
			return nil
		},
	}
}

func newRecoverCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Catch up instances whose day passed while nothing was running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			res, err := app.sched.RecoverMissed(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recovered %d automatically, %d awaiting confirmation\n",
				res.Automatic, res.Manual)
			return nil
		},
	}
}
