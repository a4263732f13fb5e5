// stocklens-cli is a one-shot command-line client for the StockLens
// backend, useful for scripting and for checking the server without the
// TUI.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"stocklens/internal/dashboard"
	"stocklens/internal/domain"
	"stocklens/internal/synth"
	"stocklens/pkg/stocklens"
)

const version = "0.1.0"

func main() {
	_ = godotenv.Load()

	baseURL := os.Getenv("BACKEND_URL")
	if baseURL == "" {
		baseURL = "http://localhost:5000"
	}

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: stocklens-cli <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  version                  Print the CLI version\n")
		fmt.Fprintf(os.Stderr, "  health                   Probe the backend\n")
		fmt.Fprintf(os.Stderr, "  quote <symbol>           Show the current quote\n")
		fmt.Fprintf(os.Stderr, "  history <symbol> [period] Show history (1d 5d 1mo 3mo 1y 5y)\n")
		fmt.Fprintf(os.Stderr, "  predict <symbol>         Show a 7-day model projection\n")
		fmt.Fprintf(os.Stderr, "  analyze <symbol>         Show 50/200-day moving averages\n")
		fmt.Fprintf(os.Stderr, "  ask <message>            Ask the Sentio assistant\n")
		fmt.Fprintf(os.Stderr, "\nBACKEND_URL selects the server (default http://localhost:5000)\n")
	}

	if len(os.Args) < 2 {
		flag.Usage()
		os.Exit(1)
	}

	client := stocklens.NewClient(baseURL)
	ctx := context.Background()

	switch os.Args[1] {
	case "version":
		fmt.Printf("stocklens-cli %s\n", version)

	case "health":
		ok, err := client.Health(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "unhealthy: %v\n", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Println("unhealthy")
			os.Exit(1)
		}
		fmt.Println("healthy")

	case "quote":
		if len(os.Args) < 3 {
			fatal("quote requires a symbol")
		}
		q, err := client.GetQuote(ctx, domain.NormalizeSymbol(os.Args[2]))
		if err != nil {
			fatal("fetching quote: %v", err)
		}
		fmt.Printf("%s  %s\n", q.Symbol, q.Name)
		fmt.Printf("%s  %s\n", dashboard.FormatCurrency(q.Price), dashboard.FormatPercent(q.ChangePercent))
		if q.Volume > 0 {
			fmt.Printf("volume %s\n", dashboard.FormatLargeNumber(float64(q.Volume)))
		}
		if q.FiftyTwoWeekHigh > 0 {
			fmt.Printf("52w range %s - %s\n",
				dashboard.FormatCurrency(q.FiftyTwoWeekLow),
				dashboard.FormatCurrency(q.FiftyTwoWeekHigh))
		}

	case "history":
		if len(os.Args) < 3 {
			fatal("history requires a symbol")
		}
		periodArg := ""
		if len(os.Args) > 3 {
			periodArg = os.Args[3]
		}
		period, err := domain.ParsePeriod(periodArg)
		if err != nil {
			fatal("%v", err)
		}
		series, err := client.GetHistory(ctx, domain.NormalizeSymbol(os.Args[2]), period)
		if err != nil {
			fatal("fetching history: %v", err)
		}
		for _, p := range series {
			fmt.Printf("%s  %s\n", p.Date.Format("2006-01-02"), dashboard.FormatCurrency(p.Price))
		}

	case "predict":
		if len(os.Args) < 3 {
			fatal("predict requires a symbol")
		}
		sym := domain.NormalizeSymbol(os.Args[2])
		points, stats := synth.NewGenerator().Predictions(basePriceFor(ctx, client, sym), 7)
		fmt.Printf("%s 7-day projection (accuracy %.1f%%, RMSE %.2f, MAE %.2f)\n",
			sym, stats.Accuracy, stats.RMSE, stats.MAE)
		for _, p := range points {
			fmt.Printf("day %d  actual %s  predicted %s\n",
				p.Day, dashboard.FormatCurrency(p.Actual), dashboard.FormatCurrency(p.Predicted))
		}

	case "analyze":
		if len(os.Args) < 3 {
			fatal("analyze requires a symbol")
		}
		sym := domain.NormalizeSymbol(os.Args[2])
		ma := synth.NewGenerator().MovingAverages(basePriceFor(ctx, client, sym), 30)
		for _, p := range ma {
			fmt.Printf("%s  price %s  ma50 %s  ma200 %s\n",
				p.Date.Format("2006-01-02"),
				dashboard.FormatCurrency(p.Price),
				dashboard.FormatCurrency(p.MA50),
				dashboard.FormatCurrency(p.MA200))
		}

	case "ask":
		if len(os.Args) < 3 {
			fatal("ask requires a message")
		}
		reply, err := client.Ask(ctx, strings.Join(os.Args[2:], " "))
		if err != nil {
			fatal("asking assistant: %v", err)
		}
		fmt.Println(reply)

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		flag.Usage()
		os.Exit(1)
	}
}

// basePriceFor uses the live quote when the backend is up, otherwise the
// deterministic base-price table.
func basePriceFor(ctx context.Context, client *stocklens.Client, symbol string) float64 {
	if q, err := client.GetQuote(ctx, symbol); err == nil {
		return q.Price
	}
	return synth.BasePrice(symbol)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
