package backtest

import (
	"fmt"
	"io"
	"time"
)

// PrintSummary writes a human-readable run report.
func PrintSummary(w io.Writer, s Summary) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, "==================================================")

	fmt.Fprintf(w, "Strategy:      %s\n", s.Strategy)
	fmt.Fprintf(w, "Instrument:    %s\n", s.Instrument)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Period")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start:         %s\n", s.Start.Format(time.DateOnly))
	fmt.Fprintf(w, "End:           %s\n", s.End.Format(time.DateOnly))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", s.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", s.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", s.Losses)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", s.WinRate*100)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Realized P&L:  %.2f\n", s.RealizedPL)
	fmt.Fprintf(w, "Total P&L:     %.2f\n", s.TotalPL)
	fmt.Fprintf(w, "Annual Return: %.2f%%\n", s.AnnualReturn*100)
	if s.Sharpe != 0 {
		fmt.Fprintf(w, "Sharpe Ratio:  %.2f\n", s.Sharpe)
	}
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", s.MaxDrawdown*100)

	fmt.Fprintln(w)
}
