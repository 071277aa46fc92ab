package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pkoval/tally/internal/database/repository"
)

func newListCommand() *cobra.Command {
	var (
		templates bool
		scheduled bool
		status    string
		account   string
		dueStr    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions and templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			filters := repository.InstanceFilters{
				TemplatesOnly: templates,
				ScheduledOnly: scheduled,
				Status:        repository.Status(status),
			}
			if account != "" {
				filters.AccountID, err = app.accountID(ctx, account)
				if err != nil {
					return err
				}
			}
			if dueStr != "" {
				filters.DueBy, err = parseDay(dueStr, app.sched.Loc)
				if err != nil {
					return err
				}
			}

			insts, err := app.store.List(ctx, filters)
			if err != nil {
				return err
			}
			if len(insts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to list")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if templates {
				fmt.Fprintln(w, "ID\tFROM\tRULE\tAMOUNT\tNOTE")
				for _, inst := range insts {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\n",
						inst.ID, inst.EffectiveDate.Format("2006-01-02"), ruleSummary(inst),
						inst.Amount.StringFixed(2), inst.Currency, inst.Note)
				}
				return w.Flush()
			}
			fmt.Fprintln(w, "ID\tDATE\tSTATUS\tAMOUNT\tNOTE")
			for _, inst := range insts {
				if inst.IsTemplate {
					continue
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s %s\t%s\n",
					inst.ID, inst.EffectiveDate.Format("2006-01-02"), inst.Status,
					inst.Amount.StringFixed(2), inst.Currency, inst.Note)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&templates, "templates", false, "list recurring templates instead of instances")
	cmd.Flags().BoolVar(&scheduled, "scheduled", false, "only rows the scheduler watches")
	cmd.Flags().StringVar(&status, "status", "", "filter by status: pending, executed or failed")
	cmd.Flags().StringVar(&account, "account", "", "filter by source account id or name")
	cmd.Flags().StringVar(&dueStr, "due", "", "only rows effective on or before this date")

	return cmd
}

func ruleSummary(tpl repository.Instance) string {
	rule := tpl.Rule()
	if rule == nil {
		return "-"
	}
	s := fmt.Sprintf("every %d %s", rule.Interval, rule.Frequency)
	if tpl.RecurrenceEnd != nil {
		s += " until " + tpl.RecurrenceEnd.Format("2006-01-02")
	}
	return s
}
