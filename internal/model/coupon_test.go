package model

import (
    "errors"
    "testing"
    "time"
)

func TestCouponRedeem(t *testing.T) {
    now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
    c := Coupon{ID: "c1", Code: "COINABCDEFGH", Value: 20, ExpiresAt: now.AddDate(1, 0, 0)}

    if c.UsedAt != nil {
        t.Fatalf("fresh coupon must not carry UsedAt")
    }
    if err := c.Redeem(now); err != nil {
        t.Fatalf("Redeem: %v", err)
    }
    if !c.IsUsed || c.UsedAt == nil || !c.UsedAt.Equal(now) {
        t.Fatalf("expected used coupon with UsedAt=%v, got %+v", now, c)
    }
    if err := c.Redeem(now.Add(time.Hour)); !errors.Is(err, ErrCouponUsed) {
        t.Fatalf("second Redeem: want ErrCouponUsed, got %v", err)
    }
    if !c.UsedAt.Equal(now) {
        t.Errorf("UsedAt changed on failed redeem: %v", c.UsedAt)
    }
}

func TestCouponRedeemExpired(t *testing.T) {
    now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
    c := Coupon{ExpiresAt: now.Add(-time.Second)}
    if err := c.Redeem(now); !errors.Is(err, ErrCouponExpired) {
        t.Fatalf("want ErrCouponExpired, got %v", err)
    }
    if c.IsUsed || c.UsedAt != nil {
        t.Fatalf("expired coupon must stay unused: %+v", c)
    }
}

func TestUserCloneIsDeep(t *testing.T) {
    used := time.Now()
    u := User{ID: "1", Coupons: []Coupon{{ID: "a", IsUsed: true, UsedAt: &used}}}
    cp := u.Clone()
    cp.Coupons[0].Code = "changed"
    *cp.Coupons[0].UsedAt = used.Add(time.Hour)
    if u.Coupons[0].Code == "changed" || !u.Coupons[0].UsedAt.Equal(used) {
        t.Fatalf("clone aliases original coupons")
    }
    if u.AvailableCoupons() != 0 || u.UsedCoupons() != 1 {
        t.Errorf("coupon counts wrong: available=%d used=%d", u.AvailableCoupons(), u.UsedCoupons())
    }
}

func TestFindPackage(t *testing.T) {
    p, ok := FindPackage("1")
    if !ok || p.Name != "Starter Pack" || p.Coins != 100 || p.Price != 100 || p.Bonus != 0 {
        t.Fatalf("unexpected starter pack: %+v ok=%v", p, ok)
    }
    if _, ok := FindPackage("missing"); ok {
        t.Fatalf("expected missing package")
    }
    cat := Catalog()
    cat[0].Coins = 1
    if p2, _ := FindPackage("1"); p2.Coins != 100 {
        t.Fatalf("Catalog must return a copy")
    }
}
