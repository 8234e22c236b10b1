// Package main mints a development JWT for exercising the verification API.
//
// Usage:
//
//	go run ./cmd/tokengen <user-uuid>
//	go run ./cmd/tokengen -secret my-secret -ttl 2h <user-uuid>
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	secret := flag.String("secret", "inmem-dev-secret-change-in-production", "HMAC signing secret, must match JWT_SECRET on the server")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: tokengen [-secret s] [-ttl d] <user-uuid>")
		os.Exit(2)
	}

	userID, err := uuid.Parse(flag.Arg(0))
	if err != nil {
		slog.Error("Invalid user uuid", "arg", flag.Arg(0), "err", err)
		os.Exit(1)
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"iat": now.Unix(),
		"exp": now.Add(*ttl).Unix(),
	})

	signed, err := token.SignedString([]byte(*secret))
	if err != nil {
		slog.Error("Failed signing token", "err", err)
		os.Exit(1)
	}

	fmt.Println(signed)
}
