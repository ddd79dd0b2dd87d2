package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sentiment-backtester/internal/logger"
	"sentiment-backtester/internal/store"
	"sentiment-backtester/internal/trace"
	"sentiment-backtester/internal/types"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()
	must(logger.Init())
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := store.LoadConfig(configPath)
	must(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		logger.Warn(ctx, "Interrupt received, stopping after the current day")
		cancel()
	}()

	eng, rec, err := buildEngine(ctx, cfg)
	must(err)
	defer rec.Close()

	report, err := eng.Run(ctx)
	must(err)

	renderReport(report)

	if os.Getenv("REPORT_JSON") == "true" {
		b, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(b))
	}

	_ = trace.Shutdown(context.Background())
}

func renderReport(r *types.Report) {
	gain := fmt.Sprintf("$%.2f", r.NetGain)
	if r.NetGain >= 0 {
		gain = "\033[92m" + gain + "\033[0m"
	} else {
		gain = "\033[91m" + gain + "\033[0m"
	}

	fmt.Println()
	fmt.Println("Simulation Results:")
	fmt.Printf("  Period:                %s to %s (%d days)\n", r.StartDate, r.EndDate, r.Days)
	fmt.Printf("  Initial Balance:       $%.2f\n", r.InitialBalance)
	fmt.Printf("  Final Balance:         $%.2f\n", r.FinalBalance)
	fmt.Printf("  Total Stock Value:     $%.2f\n", r.StockValue)
	fmt.Printf("  Total Portfolio Value: $%.2f\n", r.TotalValue)
	fmt.Printf("  Net Gain/Loss:         %s\n", gain)
	fmt.Printf("  Trades Executed:       %d (rejected: %d, skipped: %d)\n",
		r.TradesExecuted, r.TradesRejected, r.DaysSkipped)
	fmt.Printf("  Portfolio:             %v\n", r.Holdings)
}
