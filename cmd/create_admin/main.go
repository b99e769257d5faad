package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"criptomain/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	username := flag.String("username", "admin", "admin username")
	email := flag.String("email", "", "admin email")
	password := flag.String("password", "", "admin password")
	flag.Parse()

	if *password == "" {
		log.Fatal("-password is required")
	}
	if *email == "" {
		*email = *username + "@criptomain.local"
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	var id int64
	err = db.QueryRow(context.Background(), `
		INSERT INTO users (username, email, password_hash, referral_code, is_admin)
		VALUES ($1, $2, $3, $4, TRUE)
		ON CONFLICT (username) DO UPDATE
			SET password_hash = EXCLUDED.password_hash, is_admin = TRUE
		RETURNING id`,
		*username, *email, string(hash), repository.GenerateReferralCode(),
	).Scan(&id)
	if err != nil {
		log.Fatalf("create admin: %v", err)
	}

	fmt.Printf("admin %s ready (id %d)\n", *username, id)
}
