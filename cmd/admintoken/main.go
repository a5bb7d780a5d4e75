// Command admintoken mints operator tokens and bcrypt password hashes.
//
//	admintoken -subject ops -role ADMIN
//	admintoken -hash-password 's3cret'
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hairult/hairstyle-service/internal/auth"
	"github.com/hairult/hairstyle-service/internal/config"
	"github.com/hairult/hairstyle-service/internal/domain"
)

func main() {
	subject := flag.String("subject", "operator", "token subject")
	role := flag.String("role", string(domain.AdminRoleAdmin), "ADMIN or OPERATOR")
	ttl := flag.Duration("ttl", 0, "token lifetime; defaults to ADMIN_TOKEN_TTL_MINUTES")
	hashPassword := flag.String("hash-password", "", "print a bcrypt hash for ADMIN_PASSWORD_HASH and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if *hashPassword != "" {
		hash, err := auth.HashPassword(*hashPassword, cfg.Auth.BcryptCost)
		if err != nil {
			log.Fatalf("hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	if cfg.Auth.AdminJWTSecret == "" {
		log.Fatal("ADMIN_JWT_SECRET is required")
	}
	r := domain.AdminRole(strings.ToUpper(*role))
	if !r.Valid() {
		log.Fatalf("unknown role %q", *role)
	}
	lifetime := *ttl
	if lifetime <= 0 {
		lifetime = cfg.Auth.AdminTokenTTL()
	}

	token, exp, err := auth.NewTokenManager(cfg.Auth.AdminJWTSecret, lifetime).GenerateToken(*subject, r)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}
	fmt.Fprintf(os.Stderr, "expires %s\n", exp.UTC().Format(time.RFC3339))
	fmt.Println(token)
}
