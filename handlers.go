package main

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
)

// noCache disables browser and proxy caching on every response, so pages
// rendered for an authenticated user never outlive the session.
func noCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		next.ServeHTTP(w, r)
	})
}

func indexHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		data := map[string]interface{}{
			"User":      "",
			"Coins":     int64(0),
			"Autoclick": int64(0),
		}
		if sess, err := getSession(db, r); err == nil {
			state, err := loadPlayerState(db, sess.Username)
			if err != nil {
				log.Println("failed to load player state:", err)
				http.Error(w, "Internal error", http.StatusInternalServerError)
				return
			}
			data["User"] = sess.Username
			data["Coins"] = state.Coins
			data["Autoclick"] = state.Autoclick
		}

		renderTemplate(w, "index.html", data)
	}
}

func registerHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			renderTemplate(w, "register.html", nil)
			return
		}

		username := r.FormValue("username")
		password := r.FormValue("password")

		if _, err := createAccount(db, username, password); err != nil {
			switch {
			case errors.Is(err, ErrDuplicateUser):
				renderTemplate(w, "register.html", map[string]interface{}{
					"Error": "User already exists",
				})
			case errors.Is(err, ErrInvalidInput):
				renderTemplate(w, "register.html", map[string]interface{}{
					"Error": "Username and password are required",
				})
			default:
				log.Println("registration failed:", err)
				http.Error(w, "Internal error", http.StatusInternalServerError)
			}
			return
		}

		http.Redirect(w, r, "/login", http.StatusSeeOther)
	}
}

func loginHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			renderTemplate(w, "login.html", nil)
			return
		}

		account, err := authenticate(db, r.FormValue("username"), r.FormValue("password"))
		if err != nil {
			if errors.Is(err, ErrInvalidCredentials) {
				renderTemplate(w, "login.html", map[string]interface{}{
					"Error": "Invalid username or password",
				})
				return
			}
			log.Println("login failed:", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		sessionID, expiresAt, err := createSession(db, account.Username)
		if err != nil {
			log.Println("failed to create session:", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		writeSessionCookie(w, sessionID, expiresAt)

		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// logoutHandler succeeds even when no session exists.
func logoutHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie("session_id"); err == nil {
			clearSession(db, cookie.Value)
		}
		clearSessionCookie(w)
		http.Redirect(w, r, "/login", http.StatusFound)
	}
}

func profileHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := getSession(db, r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		account, err := getAccount(db, sess.Username)
		if err != nil {
			log.Println("failed to load account:", err)
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		renderTemplate(w, "profile.html", map[string]interface{}{
			"User":      account.Username,
			"AuthToken": account.AuthToken,
		})
	}
}

type shopItem struct {
	ID    string
	Name  string
	Price int64
}

func shopHandler(db *sql.DB, cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := getSession(db, r)
		if err != nil {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}

		items := make([]shopItem, 0, len(productOrder))
		for _, id := range productOrder {
			p := products[id]
			items = append(items, shopItem{ID: id, Name: p.Name, Price: p.Price})
		}

		renderTemplate(w, "shop.html", map[string]interface{}{
			"User":           sess.Username,
			"Products":       items,
			"PublishableKey": cfg.StripePublishableKey,
		})
	}
}

// createCheckoutSessionHandler requires an authenticated session: purchases
// must never be initiated for a browser that cannot be credited later.
func createCheckoutSessionHandler(db *sql.DB, provider PaymentProvider, cfg *Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		sess, err := getSession(db, r)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		redirectURL, err := beginCheckout(db, provider, sess.SessionID, r.FormValue("product_id"), cfg.DomainURL)
		if err != nil {
			if errors.Is(err, ErrUnknownProduct) {
				http.Error(w, "Unknown product", http.StatusBadRequest)
				return
			}
			log.Println("failed to begin checkout:", err)
			http.Error(w, "Payment provider unavailable", http.StatusBadGateway)
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusSeeOther)
	}
}

// successHandler always renders the success page; crediting happens only
// when the session still carries a pending purchase.
func successHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if sess, err := getSession(db, r); err == nil {
			if err := completeCheckout(db, sess.SessionID); err != nil {
				log.Println("failed to complete checkout:", err)
			}
		}
		renderTemplate(w, "success.html", nil)
	}
}

func cancelHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderTemplate(w, "cancel.html", nil)
	}
}
