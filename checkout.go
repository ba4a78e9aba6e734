package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var ErrUnknownProduct = errors.New("UNKNOWN_PRODUCT")

// PaymentProvider opens a hosted one-time payment session for a product and
// returns the URL the browser should be redirected to.
type PaymentProvider interface {
	CreateSession(p Product, successURL string, cancelURL string) (string, error)
}

type stripeProvider struct {
	api      *client.API
	currency string
}

func newStripeProvider(secretKey string, currency string) *stripeProvider {
	return &stripeProvider{
		api:      client.New(secretKey, nil),
		currency: currency,
	}
}

func (s *stripeProvider) CreateSession(p Product, successURL string, cancelURL string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(s.currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(p.Name),
				},
				UnitAmount: stripe.Int64(p.Price),
			},
			Quantity: stripe.Int64(1),
		}},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}

	sess, err := s.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// beginCheckout records the product as the session's pending purchase and
// opens a payment session with the provider. At most one purchase is in
// flight per session; a new checkout overwrites the previous marker.
// The provider call is never retried: re-issuing it could open duplicate
// payment sessions for one purchase.
func beginCheckout(db *sql.DB, provider PaymentProvider, sessionID string, productID string, domainURL string) (string, error) {
	p, ok := lookupProduct(productID)
	if !ok {
		return "", ErrUnknownProduct
	}

	if _, err := db.Exec(`
		UPDATE sessions
		SET pending_purchase = $2
		WHERE session_id = $1
	`, sessionID, productID); err != nil {
		return "", err
	}

	return provider.CreateSession(p, domainURL+"/success", domainURL+"/cancel")
}

// completeCheckout credits the session's pending purchase, if any. The
// marker is cleared only after the state write succeeded, so a failed write
// leaves the purchase pending for the next visit rather than dropping it.
// With the marker cleared, calling again is a no-op: returning to the
// success page twice never double-credits.
func completeCheckout(db *sql.DB, sessionID string) error {
	var username string
	var pending sql.NullString
	err := db.QueryRow(`
		SELECT username, pending_purchase
		FROM sessions
		WHERE session_id = $1
	`, sessionID).Scan(&username, &pending)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	if !pending.Valid || pending.String == "" {
		return nil
	}

	if err := fulfill(db, username, pending.String); err != nil {
		if !errors.Is(err, ErrUnknownProduct) {
			return err
		}
		// Stale or bogus marker; clear it without crediting anything.
		log.Println("fulfillment skipped, unknown product:", pending.String)
	}

	_, err = db.Exec(`
		UPDATE sessions
		SET pending_purchase = NULL
		WHERE session_id = $1
	`, sessionID)
	return err
}

// fulfill credits one completed purchase onto the user's persisted state.
// The product is re-validated here because fulfill can be reached outside
// beginCheckout. A missing state row means the user never played: start
// from zero.
func fulfill(db *sql.DB, username string, productID string) error {
	p, ok := lookupProduct(productID)
	if !ok {
		return ErrUnknownProduct
	}

	state, err := loadPlayerState(db, username)
	if err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(productID, coinProductPrefix):
		state.Coins += p.Amount
	case strings.HasPrefix(productID, autoProductPrefix):
		state.Autoclick += autoclickIncrements[productID]
	}

	return savePlayerState(db, state)
}
