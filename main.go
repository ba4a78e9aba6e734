package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to open database:", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		log.Fatal("failed to ping database:", err)
	}
	log.Println("Connected to PostgreSQL")

	if err := ensureSchema(db); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	provider := newStripeProvider(cfg.StripeSecretKey, cfg.Currency)

	mux := http.NewServeMux()
	registerRoutes(mux, db, provider, cfg)

	addr := "0.0.0.0:" + cfg.Port
	log.Println("Listening on", addr)
	if err := http.ListenAndServe(addr, noCache(mux)); err != nil {
		log.Fatal("server failed:", err)
	}
}

func registerRoutes(mux *http.ServeMux, db *sql.DB, provider PaymentProvider, cfg *Config) {
	mux.HandleFunc("/", indexHandler(db))
	mux.HandleFunc("/register", registerHandler(db))
	mux.HandleFunc("/login", loginHandler(db))
	mux.HandleFunc("/logout", logoutHandler(db))
	mux.HandleFunc("/profile", profileHandler(db))
	mux.HandleFunc("/shop", shopHandler(db, cfg))
	mux.HandleFunc("/create-checkout-session", createCheckoutSessionHandler(db, provider, cfg))
	mux.HandleFunc("/success", successHandler(db))
	mux.HandleFunc("/cancel", cancelHandler())
}
