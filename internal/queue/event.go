// Package queue defines message payloads exchanged over the message broker.
package queue

// CoinsPurchasedQueue is the durable queue purchase events are routed to.
const CoinsPurchasedQueue = "coins.purchased"

// CoinsPurchasedEvent is published after a purchase has been credited.  It
// carries enough to log, notify or feed analytics without reading the
// primary store.
type CoinsPurchasedEvent struct {
    UserID      string `json:"user_id"`
    UserName    string `json:"user_name"`
    PackageID   string `json:"package_id"`
    PackageName string `json:"package_name"`
    Quantity    int    `json:"quantity"`
    Amount      int64  `json:"amount"`
    Coins       int64  `json:"coins"`
    CouponCode  string `json:"coupon_code"`
    CouponValue int64  `json:"coupon_value"`
    Balance     int64  `json:"balance"`
    PurchasedAt string `json:"purchased_at"`
}
