package presenter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"fraksi/internal/band"
	"fraksi/internal/ladder"
	"fraksi/internal/model"
	"fraksi/internal/position"
	"fraksi/internal/simulator"
	"fraksi/internal/tick"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// RenderRules writes the fraction table.
func RenderRules(w io.Writer, summaries []tick.Summary) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Harga\tFraksi\t% per tick")
	for _, s := range summaries {
		var rng, pct string
		if s.Rule.Unbounded() {
			rng = Number(s.Rule.Min) + " ke atas"
			pct = "maks " + Percent(s.MaxPercentPerTick) + " (di harga " + Number(s.Rule.Min) + ")"
		} else {
			rng = Number(s.Rule.Min) + " - " + Number(s.Rule.Max)
			pct = Percent(s.MaxPercentPerTick) + " - " + Percent(*s.MinPercentPerTick)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rng, Currency(s.Rule.Size), pct)
	}
	return tw.Flush()
}

// RenderTick writes the fraction applying at one price.
func RenderTick(w io.Writer, info tick.Info) error {
	_, err := fmt.Fprintf(w, "Harga: %s\nFraksi / tick: %s\nPerubahan per 1 tick: %s\n",
		Currency(info.Price), Currency(info.Rule.Size), Percent(info.PercentPerTick))
	return err
}

// RenderLimits writes the auto-rejection limits of a reference price.
func RenderLimits(w io.Writer, l band.Limits) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Harga acuan\t%s\n", Currency(l.Reference))
	fmt.Fprintf(tw, "Rentang harga (tabel IDX)\t%s\n", l.Band.RangeLabel)
	fmt.Fprintf(tw, "ARA (%s)\t%s\n", Percent(l.Band.UpperPercent), Currency(l.Upper))
	fmt.Fprintf(tw, "ARB (%s)\t%s\n", Percent(l.Band.LowerPercent), Currency(l.Lower))
	return tw.Flush()
}

// RenderLadder writes the ladder summary followed by one row per level.
func RenderLadder(w io.Writer, l *ladder.Ladder) error {
	fmt.Fprintf(w, "Harga open: %s\nHarga target: %s\nRentang harga (tabel IDX): %s\n",
		Currency(l.Limits.Reference), Currency(l.Entry), l.Limits.Band.RangeLabel)
	fmt.Fprintf(w, "Batas ARA: %s (%s)\nBatas ARB: %s (%s)\n",
		Currency(l.Limits.Upper), Percent(l.Limits.Band.UpperPercent),
		Currency(l.Limits.Lower), Percent(l.Limits.Band.LowerPercent))
	fmt.Fprintf(w, "Perubahan: %s (%s, %s)\n\n",
		signedCurrency(l.Entry-l.Limits.Reference), SignedTicks(l.TicksFromReference), SignedPercent(l.PercentFromReference))

	tw := newTable(w)
	fmt.Fprintln(tw, "Harga\tDari entry\tDari open\t")
	for _, lvl := range l.Levels {
		marker := ""
		switch {
		case lvl.IsEntry && lvl.IsReference:
			marker = "entry/open"
		case lvl.IsEntry:
			marker = "entry"
		case lvl.IsReference:
			marker = "open"
		}
		fmt.Fprintf(tw, "%s\t%s (%s)\t%s (%s)\t%s\n",
			Currency(lvl.Price),
			SignedTicks(lvl.TicksFromEntry), SignedPercent(lvl.PercentFromEntry),
			SignedTicks(lvl.TicksFromReference), SignedPercent(lvl.PercentFromReference),
			marker)
	}
	return tw.Flush()
}

// RenderTrailing writes a trailing stop plan.
func RenderTrailing(w io.Writer, p *ladder.TrailingPlan) error {
	fmt.Fprintf(w, "Harga saat ini: %s\nTick: %s\nPenurunan %d tick: %s\nPersentase trailing stop: %s\nLevel harga stop: %s\n\n",
		Currency(p.Price), Currency(p.TickSize), p.Ticks, Currency(p.Drop), Percent(p.DropPercent), Currency(p.StopPrice))

	tw := newTable(w)
	fmt.Fprintln(tw, "Posisi\tHarga\tPerubahan\t")
	for _, lvl := range p.Levels {
		marker := ""
		if lvl.IsStop {
			marker = "stop"
		}
		fmt.Fprintf(tw, "%d tick\t%s\t%s\t%s\n", lvl.Offset, Currency(lvl.Price), SignedPercent(lvl.Percent), marker)
	}
	return tw.Flush()
}

// RenderSimulation writes the monthly table of a run, and the daily one when daily is set.
func RenderSimulation(w io.Writer, r *simulator.Result, daily bool) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "Bulan\tModal awal\tModal akhir\tProfit kotor\tProfit diambil\tProfit belum diambil\tPertumbuhan")
	for _, m := range r.Months {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.Month, Currency(m.StartCapital), Currency(m.EndCapital), Currency(m.GrossProfit),
			Currency(m.ProfitTaken), Currency(m.ProfitNotTaken), SignedPercent(m.GrowthPercent))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if daily {
		fmt.Fprintln(w)
		tw = newTable(w)
		fmt.Fprintln(tw, "Hari\tBulan\tModal awal\tProfit\tDiambil\tModal akhir")
		for _, d := range r.Days {
			fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%s\t%s\n",
				d.Day, d.Month, Currency(d.StartCapital), Currency(d.Profit), Currency(d.ProfitTaken), Currency(d.EndCapital))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	t := r.Totals
	_, err := fmt.Fprintf(w, "\nModal akhir: %s\nTotal profit: %s\nTotal profit diambil: %s\nProfit belum diambil: %s\nPertumbuhan modal: %s\n",
		Currency(t.FinalCapital), Currency(t.CumulativeProfit), Currency(t.CumulativeProfitTaken),
		Currency(t.ProfitNotTaken), SignedPercent(t.GrowthPercent))
	return err
}

// RenderExit writes a partial exit result.
func RenderExit(w io.Writer, r model.ExitResult) error {
	avg := "tidak tersedia (posisi habis)"
	if r.NewAverageCost != nil {
		avg = Currency(*r.NewAverageCost)
	}

	tw := newTable(w)
	fmt.Fprintf(tw, "Lot terjual\t%s\n", Lots(r.SoldLots))
	fmt.Fprintf(tw, "Sisa lot\t%s\n", Lots(r.RemainingLots))
	fmt.Fprintf(tw, "Kenaikan harga\t%s\n", SignedPercent(r.PercentChange))
	fmt.Fprintf(tw, "Profit terealisasi\t%s\n", Currency(r.Proceeds))
	fmt.Fprintf(tw, "Harga rata-rata baru\t%s\n", avg)
	fmt.Fprintf(tw, "Modal tersisa\t%s\n", Currency(r.RemainingCapitalValue))
	return tw.Flush()
}

// RenderDividend writes yearly, monthly and daily dividend income.
func RenderDividend(w io.Writer, inc position.Income) error {
	fmt.Fprintf(w, "Modal: %s\nTarget dividend yield per tahun: %s\nAsumsi pajak dividen: %s\n\n",
		Currency(inc.Capital), Percent(inc.YieldPercent), Percent(inc.TaxPercent))

	tw := newTable(w)
	fmt.Fprintln(tw, "Periode\tKotor\tPajak\tBersih")
	rows := []struct {
		label string
		f     position.IncomeFigures
	}{
		{"Per tahun", inc.Yearly},
		{"Per bulan (12 bln)", inc.Monthly},
		{"Per hari (365 hari)", inc.Daily},
	}
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.label, Currency(row.f.Gross), Currency(row.f.Tax), Currency(row.f.Net))
	}
	return tw.Flush()
}
