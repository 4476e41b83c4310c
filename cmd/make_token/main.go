package main

import (
	"flag"
	"fmt"
	"log"

	"fintrack/internal/service"

	"github.com/joho/godotenv"
)

// Mints a development JWT for a given owner id so the API can be exercised
// without the external auth service.
func main() {
	_ = godotenv.Load()

	ownerID := flag.Int64("owner", 1, "owner id to embed in the token")
	flag.Parse()

	service.InitJWT()

	token, err := service.GenerateJWT(*ownerID)
	if err != nil {
		log.Fatalf("generate token: %v", err)
	}
	fmt.Println(token)
}
