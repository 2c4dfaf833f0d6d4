package model

import (
    "errors"
    "time"
)

var (
    // ErrCouponUsed is returned when redeeming a coupon a second time.
    ErrCouponUsed = errors.New("coupon already used")
    // ErrCouponExpired is returned when redeeming a coupon past ExpiresAt.
    ErrCouponExpired = errors.New("coupon expired")
)

// Coupon is a reward voucher granted on purchase.  UsedAt is set if and only
// if IsUsed is true, and IsUsed never goes back to false.
type Coupon struct {
    ID        string     `json:"id"`
    Code      string     `json:"code"`
    Value     int64      `json:"value"`
    IsUsed    bool       `json:"isUsed"`
    CreatedAt time.Time  `json:"createdAt"`
    UsedAt    *time.Time `json:"usedAt,omitempty"`
    ExpiresAt time.Time  `json:"expiresAt"`
}

// Clone copies the coupon including the UsedAt pointer target.
func (c Coupon) Clone() Coupon {
    out := c
    if c.UsedAt != nil {
        t := *c.UsedAt
        out.UsedAt = &t
    }
    return out
}

// Expired reports whether the coupon can no longer be redeemed at now.
func (c Coupon) Expired(now time.Time) bool {
    return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// Redeem marks the coupon used at now.
func (c *Coupon) Redeem(now time.Time) error {
    if c.IsUsed {
        return ErrCouponUsed
    }
    if c.Expired(now) {
        return ErrCouponExpired
    }
    t := now.UTC()
    c.IsUsed = true
    c.UsedAt = &t
    return nil
}
