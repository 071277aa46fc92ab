package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkoval/tally/internal/service"
)

func newConfirmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <id>",
		Short: "Execute a pending scheduled transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			inst, err := app.instance(ctx, args[0])
			if err != nil {
				return err
			}
			applied, err := app.sched.Execute(ctx, *inst)
			if err != nil {
				return err
			}
			if !applied {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is %s, nothing to do\n", inst.ID, inst.Status)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Executed %s (%s %s)\n",
				inst.ID, inst.Amount.StringFixed(2), inst.Currency)
			return nil
		},
	}
}

func newRetryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <id>",
		Short: "Retry a failed scheduled transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			inst, err := app.instance(ctx, args[0])
			if err != nil {
				return err
			}
			applied, err := app.sched.Retry(ctx, *inst)
			if err != nil {
				return err
			}
			if !applied {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is %s, not failed\n", inst.ID, inst.Status)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Executed %s\n", inst.ID)
			return nil
		},
	}
}

func newDeleteCommand() *cobra.Command {
	var scopeStr string

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a recurring series, or part of it",
		Long: `Delete a recurring transaction. The id may be an instance or the template;
--scope picks how much of the series goes with it:

  this    only the given instance
  future  the given instance and everything after it
  all     every instance plus the template`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			scope, err := service.ParseDeleteScope(scopeStr)
			if err != nil {
				return err
			}
			inst, err := app.instance(ctx, args[0])
			if err != nil {
				return err
			}
			if err := app.sched.DeleteRecurring(ctx, *inst, scope); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (scope %s)\n", inst.ID, scope)
			return nil
		},
	}

	cmd.Flags().StringVar(&scopeStr, "scope", "this", "this, future or all")
	return cmd
}

func newCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel one scheduled transaction and its reminder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			inst, err := app.instance(ctx, args[0])
			if err != nil {
				return err
			}
			if err := app.sched.CancelInstance(ctx, *inst); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cancelled %s\n", inst.ID)
			return nil
		},
	}
}
