package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const dateLayout = time.DateOnly

func newBillingCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "billing",
		Short: "Show the account's subscription and spend",
	}

	subscription := &cobra.Command{
		Use:     "subscription",
		Short:   "Show the billing plan and limits",
		Args:    cobra.NoArgs,
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := a.sess.Subscription(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "plan\t%s (%s)\n", sub.Plan.Title, sub.Plan.ID)
			fmt.Fprintf(tw, "account\t%s\n", sub.AccountName)
			fmt.Fprintf(tw, "soft limit\t$%.2f\n", sub.SoftLimitUSD)
			fmt.Fprintf(tw, "hard limit\t$%.2f\n", sub.HardLimitUSD)
			fmt.Fprintf(tw, "access until\t%s\n", time.Unix(sub.AccessUntil, 0).UTC().Format(dateLayout))
			if !sub.HasPaymentMethod {
				fmt.Fprintf(tw, "payment\t%s\n", styleWarning.Render("no payment method"))
			}
			return tw.Flush()
		},
	}

	var start, end string
	usage := &cobra.Command{
		Use:     "usage",
		Short:   "Show daily spend between two dates",
		Args:    cobra.NoArgs,
		PreRunE: connected(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, to, err := usageRange(start, end, time.Now().UTC())
			if err != nil {
				return err
			}

			spend, err := a.sess.BillingUsage(cmd.Context(), from, to)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, day := range spend.DailyCosts {
				if day.Total() == 0 {
					continue
				}
				fmt.Fprintf(tw, "%s\t$%.2f\n", day.Time().Format(dateLayout), day.Total()/100)
			}
			fmt.Fprintf(tw, "%s\t%s\n", styleBold.Render("total"), numberColor.Render(fmt.Sprintf("$%.2f", spend.TotalUsage/100)))
			return tw.Flush()
		},
	}
	usage.Flags().StringVar(&start, "start", "", "first day, YYYY-MM-DD (default 30 days before --end)")
	usage.Flags().StringVar(&end, "end", "", "day after the last one, YYYY-MM-DD (default tomorrow)")

	cmd.AddCommand(subscription, usage)
	return cmd
}

// usageRange parses the --start and --end flags. The end is exclusive.
func usageRange(start, end string, now time.Time) (time.Time, time.Time, error) {
	to := now.Truncate(24*time.Hour).AddDate(0, 0, 1)
	if end != "" {
		t, err := time.Parse(dateLayout, end)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrap(err, "parse --end")
		}
		to = t
	}

	from := to.AddDate(0, 0, -30)
	if start != "" {
		t, err := time.Parse(dateLayout, start)
		if err != nil {
			return time.Time{}, time.Time{}, errors.Wrap(err, "parse --start")
		}
		from = t
	}

	if !from.Before(to) {
		return time.Time{}, time.Time{}, errors.Errorf("start %s is not before end %s", from.Format(dateLayout), to.Format(dateLayout))
	}
	return from, to, nil
}
