package model

import "time"

// TransactionType classifies ledger entries.
type TransactionType string

const (
    TxPurchase         TransactionType = "purchase"
    TxCouponGeneration TransactionType = "coupon_generation"
)

// TransactionStatus is the settlement state of a ledger entry.
type TransactionStatus string

const (
    TxCompleted TransactionStatus = "completed"
    TxPending   TransactionStatus = "pending"
    TxFailed    TransactionStatus = "failed"
)

// Transaction is an append-only ledger entry.  UserID is a plain reference;
// nothing enforces that the user still exists.
type Transaction struct {
    ID        string            `json:"id"`
    UserID    string            `json:"userId"`
    Type      TransactionType   `json:"type"`
    Amount    int64             `json:"amount"`
    Coins     int64             `json:"coins"`
    CreatedAt time.Time         `json:"createdAt"`
    Status    TransactionStatus `json:"status"`
}
