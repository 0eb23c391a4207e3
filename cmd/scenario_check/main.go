package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
)

const (
	colorGreen = "\033[32m"
	colorRed   = "\033[31m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

// scenario_check corre los escenarios canonicos con muchas semillas y reporta
// cualquier puntaje fuera de rango o recomendacion inconsistente con el tier.
func main() {
	seeds := flag.Uint64("seeds", 200, "number of seeds per scenario")
	verbose := flag.Bool("v", false, "print every run")
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()
	var total int
	for _, sc := range defaultScenarios() {
		fmt.Printf("%s[Escenario]%s %s\n", colorCyan, colorReset, sc.Name)
		violations := runScenario(ctx, sc, *seeds, zap.NewNop())
		for _, v := range violations {
			fmt.Printf("  %sFAIL%s seed=%d %s\n", colorRed, colorReset, v.Seed, v.Detail)
		}
		if len(violations) == 0 {
			fmt.Printf("  %sOK%s %d seeds\n", colorGreen, colorReset, *seeds)
		} else if *verbose {
			logger.Warn("scenario violations", zap.String("scenario", sc.Name), zap.Int("count", len(violations)))
		}
		total += len(violations)
	}

	fmt.Println("==== Resumen ====")
	fmt.Printf("Violaciones: %d\n", total)
	if total > 0 {
		os.Exit(1)
	}
}
