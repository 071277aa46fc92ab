package commands

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/pkoval/tally/internal/recurrence"
	"github.com/pkoval/tally/internal/service"
)

func newAddCommand() *cobra.Command {
	var (
		account    string
		to         string
		category   string
		amountStr  string
		currency   string
		note       string
		onStr      string
		every      string
		interval   int
		untilStr   string
		automatic  bool
		adjustDay  bool
		startCount bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a scheduled transaction or a recurring template",
		Long: `Add a single scheduled transaction, or, with --every, a recurring
template whose instances are generated immediately.

Examples:
  tally add --account Cash --amount -15.99 --note "Streaming" --on 2026-04-01 --every monthly --automatic
  tally add --account Checking --to Savings --amount -200 --on 2026-04-25 --every monthly --adjust-working-day
  tally add --account Cash --amount -80 --note "Concert tickets" --on 2026-05-02`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			app, err := openApp(ctx)
			if err != nil {
				return err
			}
			defer app.Close()

			amount, err := decimal.NewFromString(amountStr)
			if err != nil {
				return fmt.Errorf("parse amount %q: %w", amountStr, err)
			}
			start, err := parseDay(onStr, app.sched.Loc)
			if err != nil {
				return err
			}
			accountID, err := app.accountID(ctx, account)
			if err != nil {
				return err
			}
			categoryID, err := app.categoryID(ctx, category)
			if err != nil {
				return err
			}

			params := service.ScheduleParams{
				AccountID:        accountID,
				CategoryID:       categoryID,
				Amount:           amount,
				Currency:         currency,
				Note:             note,
				Start:            start,
				IsAutomatic:      automatic,
				AdjustWorkingDay: adjustDay,
				IncludeStartDay:  startCount,
			}
			if to != "" {
				destID, err := app.accountID(ctx, to)
				if err != nil {
					return err
				}
				params.DestAccountID = &destID
			}
			if untilStr != "" {
				until, err := parseDay(untilStr, app.sched.Loc)
				if err != nil {
					return err
				}
				params.RecurrenceEnd = &until
			}

			if every == "" {
				inst, err := app.sched.CreateScheduled(ctx, params)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %s for %s\n",
					inst.ID, inst.EffectiveDate.Format("2006-01-02"))
				return nil
			}

			freq, ok := recurrence.ParseFrequency(every)
			if !ok {
				return fmt.Errorf("unknown frequency %q (want daily, weekly, monthly or yearly)", every)
			}
			params.Rule = &recurrence.Rule{Frequency: freq, Interval: interval}
			tpl, err := app.sched.CreateTemplate(ctx, params)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created template %s (every %d %s from %s)\n",
				tpl.ID, interval, freq, tpl.EffectiveDate.Format("2006-01-02"))
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "", "source account id or name (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&to, "to", "", "destination account for transfers")
	cmd.Flags().StringVar(&category, "category", "", "category id or name")
	cmd.Flags().StringVar(&amountStr, "amount", "", "signed amount, negative for spending (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().StringVar(&currency, "currency", "", "currency code (default USD)")
	cmd.Flags().StringVar(&note, "note", "", "description shown in listings and reminders")
	cmd.Flags().StringVar(&onStr, "on", "", "date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&every, "every", "", "recurrence frequency: daily, weekly, monthly or yearly")
	cmd.Flags().IntVar(&interval, "interval", 1, "recurrence interval, e.g. 2 with --every weekly is fortnightly")
	cmd.Flags().StringVar(&untilStr, "until", "", "last date the recurrence may produce")
	cmd.Flags().BoolVar(&automatic, "automatic", false, "execute without confirmation when due")
	cmd.Flags().BoolVar(&adjustDay, "adjust-working-day", false, "move weekend occurrences to the next Monday")
	cmd.Flags().BoolVar(&startCount, "include-start", false, "the start date itself is the first occurrence")

	return cmd
}
