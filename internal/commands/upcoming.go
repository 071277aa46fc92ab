package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newUpcomingCommand() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "upcoming",
		Short: "Preview the next occurrences of every template",
		Long: `Preview upcoming occurrences by walking each template's rule forward.
Nothing is written; the preview continues past the materialized window.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			occ, err := app.sched.Upcoming(ctx, count)
			if err != nil {
				return err
			}
			if len(occ) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No upcoming occurrences")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DATE\tAMOUNT\tNOTE")
			for _, o := range occ {
				note := o.Note
				if o.Adjusted {
					note += fmt.Sprintf(" (moved from %s)", o.Nominal.Format("2006-01-02"))
				}
				fmt.Fprintf(w, "%s\t%s %s\t%s\n",
					o.Date.Format("2006-01-02"), o.Amount.StringFixed(2), o.Currency, note)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&count, "count", 3, "occurrences to preview per template")
	return cmd
}
