package main

import (
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/argon2"
)

const sessionTTL = 7 * 24 * time.Hour

var (
	ErrDuplicateUser      = errors.New("USER_EXISTS")
	ErrInvalidCredentials = errors.New("INVALID_CREDENTIALS")
	ErrInvalidInput       = errors.New("INVALID_INPUT")
)

type Account struct {
	Username    string
	AuthToken   string
	CreatedAt   time.Time
	LastLoginAt time.Time
}

// createAccount registers a new user: account row plus a zero-valued game
// state row. Usernames are case-sensitive and must be unique. No session is
// established; the caller sends the user to the login form next.
func createAccount(db *sql.DB, username string, password string) (*Account, error) {
	if username == "" || len(username) > 64 {
		return nil, ErrInvalidInput
	}
	if password == "" || len(password) > 128 {
		return nil, ErrInvalidInput
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	token := uuid.NewString()

	now := time.Now().UTC()
	_, err = db.Exec(`
		INSERT INTO accounts (username, password_hash, auth_token, created_at, last_login_at)
		VALUES ($1, $2, $3, $4, $4)
	`, username, hash, token, now)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrDuplicateUser
		}
		return nil, err
	}

	if err := savePlayerState(db, &PlayerState{Username: username}); err != nil {
		return nil, err
	}

	return &Account{
		Username:    username,
		AuthToken:   token,
		CreatedAt:   now,
		LastLoginAt: now,
	}, nil
}

// authenticate returns the same error for an unknown username and a wrong
// password, so login failures don't reveal which usernames exist.
func authenticate(db *sql.DB, username string, password string) (*Account, error) {
	var account Account
	var hash string
	err := db.QueryRow(`
		SELECT username, password_hash, auth_token, created_at, last_login_at
		FROM accounts
		WHERE username = $1
	`, username).Scan(&account.Username, &hash, &account.AuthToken, &account.CreatedAt, &account.LastLoginAt)
	if err == sql.ErrNoRows {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !verifyPassword(hash, password) {
		return nil, ErrInvalidCredentials
	}

	_, _ = db.Exec(`
		UPDATE accounts
		SET last_login_at = NOW()
		WHERE username = $1
	`, account.Username)

	return &account, nil
}

func getAccount(db *sql.DB, username string) (*Account, error) {
	var account Account
	err := db.QueryRow(`
		SELECT username, auth_token, created_at, last_login_at
		FROM accounts
		WHERE username = $1
	`, username).Scan(&account.Username, &account.AuthToken, &account.CreatedAt, &account.LastLoginAt)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Session is the server-side browser session. The cookie carries only the
// random session id; username and pending purchase stay in the database.
type Session struct {
	SessionID       string
	Username        string
	PendingPurchase string
}

func createSession(db *sql.DB, username string) (string, time.Time, error) {
	sessionID, err := randomToken(24)
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Now().UTC().Add(sessionTTL)
	_, err = db.Exec(`
		INSERT INTO sessions (session_id, username, expires_at)
		VALUES ($1, $2, $3)
	`, sessionID, username, expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}

	return sessionID, expiresAt, nil
}

func clearSession(db *sql.DB, sessionID string) {
	_, _ = db.Exec(`
		DELETE FROM sessions
		WHERE session_id = $1
	`, sessionID)
}

func getSession(db *sql.DB, r *http.Request) (*Session, error) {
	cookie, err := r.Cookie("session_id")
	if err != nil {
		return nil, err
	}

	s := Session{SessionID: cookie.Value}
	var pending sql.NullString
	var expiresAt time.Time
	if err := db.QueryRow(`
		SELECT username, pending_purchase, expires_at
		FROM sessions
		WHERE session_id = $1
	`, cookie.Value).Scan(&s.Username, &pending, &expiresAt); err != nil {
		return nil, err
	}
	if pending.Valid {
		s.PendingPurchase = pending.String
	}

	if time.Now().UTC().After(expiresAt) {
		clearSession(db, s.SessionID)
		return nil, errors.New("SESSION_EXPIRED")
	}

	return &s, nil
}

func writeSessionCookie(w http.ResponseWriter, sessionID string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    sessionID,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func randomToken(bytesLen int) (string, error) {
	buf := make([]byte, bytesLen)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

const (
	argonSaltLen = 16
	argonTime    = uint32(3)
	argonMemory  = uint32(64 * 1024)
	argonThreads = uint8(2)
	argonKeyLen  = uint32(32)
)

// hashPassword returns a PHC-formatted Argon2id hash:
// $argon2id$v=19$m=65536,t=3,p=2$<base64 salt>$<base64 hash>
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory, argonTime, argonThreads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// verifyPassword re-derives the key with the parameters stored in the hash,
// so old passwords keep verifying after parameter changes.
func verifyPassword(stored string, password string) bool {
	parts := strings.Split(stored, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return false
	}

	var memory, timeCost uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &threads); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	got := argon2.IDKey([]byte(password), salt, timeCost, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1
}
