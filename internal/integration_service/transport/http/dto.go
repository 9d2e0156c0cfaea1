package http

// CheckoutFormRequest is the inbound payload for one-time checkout creation.
type CheckoutFormRequest struct {
	Price           float64          `json:"price"`
	PaidPrice       float64          `json:"paid_price"`
	Currency        string           `json:"currency,omitempty"`
	BasketID        string           `json:"basket_id"`
	Buyer           map[string]any   `json:"buyer"`
	ShippingAddress map[string]any   `json:"shipping_address"`
	BillingAddress  map[string]any   `json:"billing_address"`
	BasketItems     []map[string]any `json:"basket_items"`
	CallbackURL     string           `json:"callback_url"`
}

// SubscriptionProductRequest names a new subscription product.
type SubscriptionProductRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// PricingPlanRequest describes a recurring pricing plan.
type PricingPlanRequest struct {
	ProductReferenceCode string  `json:"product_reference_code"`
	Name                 string  `json:"name"`
	Price                float64 `json:"price"`
	Currency             string  `json:"currency,omitempty"`
	PaymentInterval      string  `json:"payment_interval,omitempty"` // MONTHLY, WEEKLY, YEARLY
	PaymentIntervalCount int     `json:"payment_interval_count,omitempty"`
	TrialPeriodDays      int     `json:"trial_period_days,omitempty"`
}

// SubscriptionCheckoutRequest starts a subscription checkout for a plan.
type SubscriptionCheckoutRequest struct {
	PricingPlanReferenceCode string         `json:"pricing_plan_reference_code"`
	Customer                 map[string]any `json:"customer"`
	CallbackURL              string         `json:"callback_url"`
}
