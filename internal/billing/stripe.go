package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

type CheckoutParams struct {
	ProjectID   uuid.UUID
	AmountCents int64
	ProductName string
}

// CheckoutSession is the processor-issued redirect target.
type CheckoutSession struct {
	SessionID string
	URL       string
}

// CheckoutClient creates hosted checkout sessions. The production
// implementation is StripeClient; tests substitute fakes.
type CheckoutClient interface {
	CreateCheckoutSession(params CheckoutParams) (*CheckoutSession, error)
}

type StripeClient struct {
	api        *client.API
	successURL string
	cancelURL  string
}

func NewStripeClient(apiKey, successURL, cancelURL string) *StripeClient {
	return &StripeClient{
		api:        client.New(apiKey, nil),
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

func (c *StripeClient) CreateCheckoutSession(p CheckoutParams) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(p.ProjectID.String()),
		SuccessURL:        stripe.String(c.successURL),
		CancelURL:         stripe.String(c.cancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(p.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.ProductName),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}

	sess, err := c.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSession{
		SessionID: sess.ID,
		URL:       sess.URL,
	}, nil
}
