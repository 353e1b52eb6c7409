package chatgpt

import (
	"context"
	"net/url"
	"time"
)

// billingDateLayout is the YYYY-MM-DD format of the usage query parameters.
const billingDateLayout = "2006-01-02"

// Subscription describes the account's billing plan.
type Subscription struct {
	Object             string  `json:"object"`
	HasPaymentMethod   bool    `json:"has_payment_method"`
	Canceled           bool    `json:"canceled"`
	CanceledAt         *int64  `json:"canceled_at"`
	Delinquent         *bool   `json:"delinquent"`
	AccessUntil        int64   `json:"access_until"`
	SoftLimit          int64   `json:"soft_limit"`
	HardLimit          int64   `json:"hard_limit"`
	SystemHardLimit    int64   `json:"system_hard_limit"`
	SoftLimitUSD       float64 `json:"soft_limit_usd"`
	HardLimitUSD       float64 `json:"hard_limit_usd"`
	SystemHardLimitUSD float64 `json:"system_hard_limit_usd"`
	Plan               struct {
		Title string `json:"title"`
		ID    string `json:"id"`
	} `json:"plan"`
	AccountName  string `json:"account_name"`
	PONumber     string `json:"po_number"`
	BillingEmail string `json:"billing_email"`
}

// LineItem is the cost of one model family on one day, in cents.
type LineItem struct {
	Name string  `json:"name"`
	Cost float64 `json:"cost"`
}

// DailyCost is the spend of one day. Timestamp is in seconds since the
// epoch.
type DailyCost struct {
	Timestamp float64    `json:"timestamp"`
	LineItems []LineItem `json:"line_items"`
}

// Time returns the day the cost was recorded.
func (d DailyCost) Time() time.Time {
	return time.Unix(int64(d.Timestamp), 0).UTC()
}

// Total sums the line items of the day, in cents.
func (d DailyCost) Total() float64 {
	var total float64
	for _, li := range d.LineItems {
		total += li.Cost
	}
	return total
}

// BillingUsage is the spend between two dates. TotalUsage is in cents.
type BillingUsage struct {
	Object     string      `json:"object"`
	DailyCosts []DailyCost `json:"daily_costs"`
	TotalUsage float64     `json:"total_usage"`
}

// GetSubscription returns the account's billing subscription.
func (c *Client) GetSubscription(ctx context.Context, opts ...RequestOption) (*Subscription, error) {
	var out Subscription
	if err := c.do(ctx, call{route: routeSubscription}, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetBillingUsage returns the account's spend from start up to end. Only the
// date part of each time is sent, formatted as YYYY-MM-DD.
func (c *Client) GetBillingUsage(ctx context.Context, start, end time.Time, opts ...RequestOption) (*BillingUsage, error) {
	q := url.Values{}
	q.Set("start_date", start.Format(billingDateLayout))
	q.Set("end_date", end.Format(billingDateLayout))

	var out BillingUsage
	if err := c.do(ctx, call{route: routeBillingUsage, query: q}, &out, opts...); err != nil {
		return nil, err
	}
	return &out, nil
}
