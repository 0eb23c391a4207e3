package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"quantumshop/internal/domain"
	"quantumshop/internal/repository"
	"quantumshop/internal/service"
)

// predict_cli corre una prediccion local contra un repositorio en memoria.
// Los datos que no vienen por flag se piden por stdin.
func main() {
	item := flag.String("item", "", "item name")
	category := flag.String("category", "", "item category")
	cheap := flag.Float64("cheap", 0, "cheap option price")
	quality := flag.Float64("quality", 0, "quality option price")
	age := flag.Int("age", 0, "user age (0 = unknown)")
	income := flag.Float64("income", 0, "user yearly income (0 = default)")
	seed := flag.Uint64("seed", 0, "random seed (0 = random)")
	verbose := flag.Bool("v", false, "log pipeline events")
	flag.Parse()

	reader := bufio.NewReader(os.Stdin)
	if strings.TrimSpace(*item) == "" {
		*item = prompt(reader, "Item: ")
	}
	if strings.TrimSpace(*category) == "" {
		*category = prompt(reader, fmt.Sprintf("Category (%s): ", strings.Join(domain.KnownCategories, ", ")))
	}
	if *cheap <= 0 {
		*cheap = promptFloat(reader, "Cheap price: ")
	}
	if *quality <= 0 {
		*quality = promptFloat(reader, "Quality price: ")
	}

	logger := zap.NewNop()
	if *verbose {
		logger, _ = zap.NewDevelopment()
	}
	defer logger.Sync()

	profile := domain.DefaultUserProfile()
	if *age > 0 {
		profile.Age = age
	}
	if *income > 0 {
		profile.CurrentIncome = income
	}

	svc := service.NewPredictionService(
		repository.NewMemoryPredictionRepository(),
		repository.StaticProfileRepository{Profile: profile},
		nil,
		service.NewRandomSource(*seed),
		5*time.Second,
		logger,
	)

	ctx := context.Background()
	result, err := svc.Predict(ctx, service.PredictInput{
		Decision: domain.PurchaseDecision{
			ItemName:     *item,
			Category:     *category,
			CheapPrice:   *cheap,
			QualityPrice: *quality,
		},
		Profile: svc.ResolveProfile(ctx, "cli"),
		UserID:  "cli",
	})
	if err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			log.Fatalf("invalid input: %s", strings.Join(vErr.Fields, ", "))
		}
		log.Fatal(err)
	}

	out := struct {
		domain.PredictionResult
		FutureSelf domain.FutureSelfState `json:"future_self_state"`
	}{result, result.FutureSelf()}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal(err)
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		log.Fatalf("read input: %v", err)
	}
	return strings.TrimSpace(line)
}

func promptFloat(reader *bufio.Reader, label string) float64 {
	raw := prompt(reader, label)
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatalf("invalid number %q", raw)
	}
	return v
}
