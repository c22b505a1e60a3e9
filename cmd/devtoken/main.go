// Command devtoken prints an access token for a user id, signed with the
// configured secret. Production tokens come from the auth service.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gdugdh24/sparkchat-backend/internal/config"
	"github.com/gdugdh24/sparkchat-backend/internal/usecase/auth"
	"github.com/google/uuid"
	flag "github.com/spf13/pflag"
)

func main() {
	userID := flag.StringP("user", "u", "", "user id (uuid)")
	ttl := flag.DurationP("ttl", "t", 0, "token lifetime, defaults to JWT_ACCESS_EXPIRY_MIN")
	flag.Parse()

	if _, err := uuid.Parse(*userID); err != nil {
		fmt.Fprintln(os.Stderr, "-user must be a uuid")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if *ttl == 0 {
		*ttl = time.Duration(cfg.JWT.AccessExpiryMin) * time.Minute
	}

	token, expiresAt, err := auth.NewTokenService(cfg.JWT.AccessSecret).Issue(*userID, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to issue token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
	fmt.Fprintf(os.Stderr, "expires at %s\n", expiresAt.Format(time.RFC3339))
}
