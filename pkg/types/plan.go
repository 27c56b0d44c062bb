package types

import "time"

// Plan is one purchasable subscription plan from the merchant catalog.
// Plans are configuration, not database rows: the gateway only echoes the
// plan id back through the merchant correlation fields.
type Plan struct {
	ID   string `json:"id" mapstructure:"id"`
	Name string `json:"name" mapstructure:"name"`
	// DurationHour is how long one settled purchase extends the subscription.
	DurationHour int64 `json:"duration_hour" mapstructure:"duration_hour"`
	// Price in minor units of Currency.
	Price    int64  `json:"price" mapstructure:"price"`
	Currency string `json:"currency" mapstructure:"currency"`
}

func (p *Plan) Duration() time.Duration {
	if p == nil {
		return 0
	}
	return time.Duration(p.DurationHour) * time.Hour
}
