package lib

import (
	"clinic/src/config"
	"context"

	"github.com/stripe/stripe-go/v82"
)

var stripeClient *stripe.Client

func GetStripeClient() *stripe.Client {
	if stripeClient != nil {
		return stripeClient
	}
	stripeClient = stripe.NewClient(config.Get().StripeSecretKey)
	return stripeClient
}

// StripeCheckout looks up Checkout Sessions with the payment intent expanded.
type StripeCheckout struct {
	client *stripe.Client
}

func NewStripeCheckout(c *stripe.Client) *StripeCheckout {
	return &StripeCheckout{client: c}
}

func (s *StripeCheckout) GetCheckoutSession(ctx context.Context, id string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionRetrieveParams{}
	params.AddExpand("payment_intent")
	return s.client.V1CheckoutSessions.Retrieve(ctx, id, params)
}
