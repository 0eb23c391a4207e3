package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"quantumshop/internal/service"
)

// issue_token emite un access token de desarrollo con JWT_SECRET.
func main() {
	userID := flag.String("user", "", "user id to embed in the token")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if strings.TrimSpace(*userID) == "" {
		log.Fatal("-user is required")
	}

	token, err := service.NewJWTService(secret, *ttl).GenerateAccessToken(*userID)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	if err := json.NewEncoder(os.Stdout).Encode(token); err != nil {
		log.Fatal(err)
	}
}
