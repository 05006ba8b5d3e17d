package main

import (
	"github.com/spf13/cobra"

	"fraksi/internal/band"
	"fraksi/internal/ladder"
	"fraksi/internal/position"
	"fraksi/internal/presenter"
	"fraksi/internal/simulator"
	"fraksi/internal/tick"
)

// parseNumbers reads every argument as a number.
func parseNumbers(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for i, a := range args {
		v, err := presenter.ParseNumber(a)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the IDX price fraction table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return presenter.RenderRules(cmd.OutOrStdout(), tick.Summaries())
		},
	}
}

func tickCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tick <price>",
		Short: "Show the tick size and per-tick percentage at a price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := presenter.ParseNumber(args[0])
			if err != nil {
				return err
			}
			info, err := tick.Describe(price)
			if err != nil {
				return err
			}
			return presenter.RenderTick(cmd.OutOrStdout(), info)
		},
	}
}

func bandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "band <reference>",
		Short: "Show the ARA/ARB limits of a reference price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reference, err := presenter.ParseNumber(args[0])
			if err != nil {
				return err
			}
			limits, err := band.LimitsFor(reference)
			if err != nil {
				return err
			}
			return presenter.RenderLimits(cmd.OutOrStdout(), limits)
		},
	}
}

func ladderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ladder <reference> <entry>",
		Short: "List every tick between the ARB and ARA limits around an entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseNumbers(args)
			if err != nil {
				return err
			}
			l, err := ladder.Build(v[0], v[1])
			if err != nil {
				return err
			}
			return presenter.RenderLadder(cmd.OutOrStdout(), l)
		},
	}
}

func trailingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trailing <price> <ticks>",
		Short: "Place a trailing stop a number of ticks below a price",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := presenter.ParseNumber(args[0])
			if err != nil {
				return err
			}
			ticks, err := presenter.ParseInt(args[1])
			if err != nil {
				return err
			}
			plan, err := ladder.TrailingStop(price, ticks)
			if err != nil {
				return err
			}
			return presenter.RenderTrailing(cmd.OutOrStdout(), plan)
		},
	}
}

func simulateCmd(a *app) *cobra.Command {
	var (
		capital    string
		rate       string
		days       int
		months     int
		mode       string
		takeProfit string
		period     string
		daily      bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Project capital growth under a fixed daily return",
		Long: `simulate runs a day-by-day capital projection. Inputs not given as flags
come from the simulator section of the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := a.cfg.Simulator
			in := simulator.Input{
				InitialCapital:   d.InitialCapital,
				DailyRate:        d.DailyRatePercent / 100,
				DaysPerMonth:     d.DaysPerMonth,
				Months:           d.Months,
				Mode:             simulator.Mode(d.Mode),
				TakeProfitAmount: d.TakeProfitAmount,
				TakeProfitPeriod: simulator.Period(d.TakeProfitPeriod),
			}

			flags := cmd.Flags()
			if flags.Changed("capital") {
				v, err := presenter.ParseNumber(capital)
				if err != nil {
					return err
				}
				in.InitialCapital = v
			}
			if flags.Changed("rate") {
				v, err := presenter.ParseNumber(rate)
				if err != nil {
					return err
				}
				in.DailyRate = v / 100
			}
			if flags.Changed("take-profit") {
				v, err := presenter.ParseNumber(takeProfit)
				if err != nil {
					return err
				}
				in.TakeProfitAmount = v
			}
			if flags.Changed("days") {
				in.DaysPerMonth = days
			}
			if flags.Changed("months") {
				in.Months = months
			}
			if flags.Changed("mode") {
				in.Mode = simulator.Mode(mode)
			}
			if flags.Changed("period") {
				in.TakeProfitPeriod = simulator.Period(period)
			}

			res, err := simulator.Simulate(in)
			if err != nil {
				return err
			}
			return presenter.RenderSimulation(cmd.OutOrStdout(), res, daily)
		},
	}

	cmd.Flags().StringVar(&capital, "capital", "", "Initial capital in rupiah")
	cmd.Flags().StringVar(&rate, "rate", "", "Daily return in percent")
	cmd.Flags().IntVar(&days, "days", 0, "Trading days per month")
	cmd.Flags().IntVar(&months, "months", 0, "Number of months")
	cmd.Flags().StringVar(&mode, "mode", "", "Profit mode: withdraw or reinvest")
	cmd.Flags().StringVar(&takeProfit, "take-profit", "", "Take-profit amount per period in reinvest mode")
	cmd.Flags().StringVar(&period, "period", "", "Take-profit period: daily or monthly")
	cmd.Flags().BoolVar(&daily, "daily", false, "Also print the day-by-day table")
	return cmd
}

func exitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exit <buy-price> <lots> <sell-price> <sell-percent>",
		Short: "Compute the outcome of selling part of a position",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseNumbers(args)
			if err != nil {
				return err
			}
			res, err := position.PartialExit(v[0], v[1], v[2], v[3])
			if err != nil {
				return err
			}
			return presenter.RenderExit(cmd.OutOrStdout(), res)
		},
	}
}

func dividendCmd(a *app) *cobra.Command {
	var tax string

	cmd := &cobra.Command{
		Use:   "dividend <capital> <yield-percent>",
		Short: "Spread a yearly dividend yield into yearly, monthly and daily income",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseNumbers(args)
			if err != nil {
				return err
			}
			taxPercent := a.cfg.Dividend.TaxPercent
			if cmd.Flags().Changed("tax") {
				if taxPercent, err = presenter.ParseNumber(tax); err != nil {
					return err
				}
			}
			inc, err := position.DividendIncome(v[0], v[1], taxPercent)
			if err != nil {
				return err
			}
			return presenter.RenderDividend(cmd.OutOrStdout(), inc)
		},
	}
	cmd.Flags().StringVar(&tax, "tax", "", "Dividend tax in percent (default from config)")
	return cmd
}
