package main

import (
	"fmt"
	"log"
	"os"

	"github.com/playmatatu/tiltball/internal/admin"
)

// Prints the bcrypt hash to put in ADMIN_TOKEN_HASH.
func main() {
	token := os.Getenv("ADMIN_TOKEN")
	if len(os.Args) > 1 {
		token = os.Args[1]
	}
	if token == "" {
		log.Fatal("usage: hash-admin-token <token> (or set ADMIN_TOKEN)")
	}

	hash, err := admin.HashToken(token)
	if err != nil {
		log.Fatalf("Failed to hash token: %v", err)
	}

	fmt.Println(hash)
	log.Println("Set ADMIN_TOKEN_HASH to the line above and send the token in the X-Admin-Token header.")
}
