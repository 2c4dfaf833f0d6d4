// Package purchase turns a coin package and a quantity into a coin credit
// and a coupon grant.  Payment confirmation goes through a Gateway; the
// only gateway shipped is a timed simulation.
package purchase

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/coin-rewards/internal/model"
	"github.com/iliyamo/coin-rewards/internal/queue"
	"github.com/iliyamo/coin-rewards/internal/repository"
	"github.com/iliyamo/coin-rewards/internal/session"
)

var (
	ErrUnknownPackage  = errors.New("unknown coin package")
	ErrInvalidQuantity = fmt.Errorf("quantity must be between 1 and %d", MaxQuantity)
	ErrPaymentFailed   = errors.New("payment not confirmed")
	ErrCouponNotFound  = errors.New("coupon not found")
)

// MaxQuantity caps the units of one package bought at once, which keeps
// price×quantity and coins×quantity far from int64 overflow.
const MaxQuantity = 1000

// CouponRatePercent is the share of the amount paid granted back as coupon value.
const CouponRatePercent = 10

// CouponValidity is how long a granted coupon can be redeemed.
const CouponValidity = 365 * 24 * time.Hour

// Account is the slice of the session manager the purchase flow needs.
type Account interface {
	Current() (model.User, bool)
	UpdateUser(ctx context.Context, p session.Patch) (model.User, error)
}

// Publisher receives purchase events.  Failures never undo a purchase.
type Publisher interface {
	PublishCoinsPurchased(ctx context.Context, ev queue.CoinsPurchasedEvent) error
}

// Payee is the UPI merchant the payment link points at.
type Payee struct {
	VPA      string
	Name     string
	Currency string
}

// DefaultPayee is the merchant account used when none is configured.
var DefaultPayee = Payee{VPA: "betmaster@paytm", Name: "BetMaster", Currency: "INR"}

// Quote is the priced order for a package and quantity.
type Quote struct {
	Package  model.CoinPackage `json:"package"`
	Quantity int               `json:"quantity"`
	Amount   int64             `json:"amount"`
	Coins    int64             `json:"coins"`
	UPILink  string            `json:"upi_link"`
}

// Receipt is the outcome of a completed purchase.
type Receipt struct {
	Quote       Quote              `json:"quote"`
	Coupon      model.Coupon       `json:"coupon"`
	User        model.User         `json:"user"`
	Transaction *model.Transaction `json:"transaction,omitempty"`
}

// Service runs purchases.  IncludeBonus adds each package's bonus coins per
// unit bought; TrackSpend accumulates TotalSpent; RecordTransactions appends
// a ledger entry per purchase.
type Service struct {
	Gateway            Gateway
	Ledger             repository.TransactionRepository
	Publisher          Publisher
	Payee              Payee
	IncludeBonus       bool
	TrackSpend         bool
	RecordTransactions bool
	Now                func() time.Time
	NewID              func() string
	NewCode            func() (string, error)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) payee() Payee {
	if s.Payee.VPA == "" {
		return DefaultPayee
	}
	return s.Payee
}

// Quote prices quantity units of pkg.
func (s *Service) Quote(pkg model.CoinPackage, quantity int) (Quote, error) {
	if quantity < 1 || quantity > MaxQuantity {
		return Quote{}, ErrInvalidQuantity
	}
	perUnit := pkg.Coins
	if s.IncludeBonus {
		perUnit += pkg.Bonus
	}
	q := Quote{
		Package:  pkg,
		Quantity: quantity,
		Amount:   pkg.Price * int64(quantity),
		Coins:    perUnit * int64(quantity),
	}
	q.UPILink = UPILink(s.payee(), q)
	return q, nil
}

// QuoteByID prices a catalog package.
func (s *Service) QuoteByID(packageID string, quantity int) (Quote, error) {
	pkg, ok := model.FindPackage(packageID)
	if !ok {
		return Quote{}, ErrUnknownPackage
	}
	return s.Quote(pkg, quantity)
}

// UPILink builds the display-only payment link handed to UPI apps.
func UPILink(p Payee, q Quote) string {
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%d&cu=%s&tn=Coin Purchase - %s x%d",
		p.VPA, p.Name, q.Amount, p.Currency, q.Package.Name, q.Quantity)
}

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewCouponCode returns "COIN" followed by eight random upper-case
// alphanumerics.
func NewCouponCode() (string, error) {
	var b strings.Builder
	b.WriteString("COIN")
	limit := big.NewInt(int64(len(codeAlphabet)))
	for i := 0; i < 8; i++ {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		b.WriteByte(codeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

func (s *Service) newCoupon(amount int64) (model.Coupon, error) {
	gen := s.NewCode
	if gen == nil {
		gen = NewCouponCode
	}
	code, err := gen()
	if err != nil {
		return model.Coupon{}, fmt.Errorf("coupon code: %w", err)
	}
	now := s.now().UTC()
	return model.Coupon{
		ID:        s.newID(),
		Code:      code,
		Value:     amount * CouponRatePercent / 100,
		CreatedAt: now,
		ExpiresAt: now.Add(CouponValidity),
	}, nil
}

// Purchase confirms payment for the quote, then credits coins and appends a
// freshly generated coupon to the account.  Repeated calls are not
// deduplicated.
func (s *Service) Purchase(ctx context.Context, acct Account, packageID string, quantity int) (Receipt, error) {
	q, err := s.QuoteByID(packageID, quantity)
	if err != nil {
		return Receipt{}, err
	}
	if _, ok := acct.Current(); !ok {
		return Receipt{}, session.ErrNoSession
	}
	if s.Gateway != nil {
		if err := s.Gateway.Confirm(ctx, q); err != nil {
			return Receipt{}, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
	}

	coupon, err := s.newCoupon(q.Amount)
	if err != nil {
		return Receipt{}, err
	}
	// Re-read after the wait so changes made through this Manager meanwhile
	// are kept.  Other Managers over the same session are not consulted.
	u, ok := acct.Current()
	if !ok {
		return Receipt{}, session.ErrNoSession
	}
	coins := u.Coins + q.Coins
	patch := session.Patch{
		Coins:   &coins,
		Coupons: append(u.Clone().Coupons, coupon),
	}
	if s.TrackSpend {
		spent := u.TotalSpent + q.Amount
		patch.TotalSpent = &spent
	}
	updated, err := acct.UpdateUser(ctx, patch)
	if err != nil {
		return Receipt{}, err
	}

	rcpt := Receipt{Quote: q, Coupon: coupon, User: updated}
	if s.RecordTransactions && s.Ledger != nil {
		tx := model.Transaction{
			ID:        s.newID(),
			UserID:    updated.ID,
			Type:      model.TxPurchase,
			Amount:    q.Amount,
			Coins:     q.Coins,
			CreatedAt: s.now().UTC(),
			Status:    model.TxCompleted,
		}
		if err := s.Ledger.Append(ctx, tx); err != nil {
			log.Printf("purchase: ledger append for user %s failed: %v", updated.ID, err)
		} else {
			rcpt.Transaction = &tx
		}
	}
	if s.Publisher != nil {
		ev := queue.CoinsPurchasedEvent{
			UserID:      updated.ID,
			UserName:    updated.Name,
			PackageID:   q.Package.ID,
			PackageName: q.Package.Name,
			Quantity:    q.Quantity,
			Amount:      q.Amount,
			Coins:       q.Coins,
			CouponCode:  coupon.Code,
			CouponValue: coupon.Value,
			Balance:     updated.Coins,
			PurchasedAt: s.now().UTC().Format(time.RFC3339),
		}
		if err := s.Publisher.PublishCoinsPurchased(ctx, ev); err != nil {
			log.Printf("purchase: publish event for user %s failed: %v", updated.ID, err)
		}
	}
	return rcpt, nil
}

// Redeem marks the coupon with code as used on the account.
func (s *Service) Redeem(ctx context.Context, acct Account, code string) (model.Coupon, error) {
	u, ok := acct.Current()
	if !ok {
		return model.Coupon{}, session.ErrNoSession
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	coupons := u.Clone().Coupons
	for i := range coupons {
		if coupons[i].Code != code {
			continue
		}
		if err := coupons[i].Redeem(s.now()); err != nil {
			return model.Coupon{}, err
		}
		if _, err := acct.UpdateUser(ctx, session.Patch{Coupons: coupons}); err != nil {
			return model.Coupon{}, err
		}
		return coupons[i], nil
	}
	return model.Coupon{}, ErrCouponNotFound
}
