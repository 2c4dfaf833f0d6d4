package model

import "time"

// Role names the dashboard tier a user is granted.  Roles are fixed at
// creation time; there is no promotion flow.
type Role string

const (
    RoleUser       Role = "user"
    RoleAdmin      Role = "admin"
    RoleSuperAdmin Role = "superadmin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
    switch r {
    case RoleUser, RoleAdmin, RoleSuperAdmin:
        return true
    }
    return false
}

// User represents a platform account as stored in the `users` table
// together with its coupons.  The JSON form is what the session store
// persists, so PasswordHash is never serialized.
//
// Fields:
//  ID         – primary key identifier of the user.
//  Email      – contact address (may be empty for mobile-only accounts).
//  Mobile     – login identifier.
//  Name       – display name.
//  Role       – user, admin or superadmin.
//  Coins      – current coin balance, never negative.
//  TotalSpent – cumulative currency spent on coin packages.
//  Coupons    – coupons granted to the user, oldest first.
//  CreatedAt  – timestamp of creation.
type User struct {
    ID           string    `json:"id"`
    Email        string    `json:"email"`
    Mobile       string    `json:"mobile,omitempty"`
    Name         string    `json:"name"`
    Role         Role      `json:"role"`
    Coins        int64     `json:"coins"`
    TotalSpent   int64     `json:"totalSpent"`
    Coupons      []Coupon  `json:"coupons"`
    CreatedAt    time.Time `json:"createdAt"`
    PasswordHash string    `json:"-"`
}

// Clone returns a deep copy so callers can mutate coupons without touching
// the original record.
func (u User) Clone() User {
    out := u
    if u.Coupons != nil {
        out.Coupons = make([]Coupon, len(u.Coupons))
        for i, c := range u.Coupons {
            out.Coupons[i] = c.Clone()
        }
    }
    return out
}

// AvailableCoupons counts coupons that have not been redeemed yet.
func (u User) AvailableCoupons() int {
    n := 0
    for _, c := range u.Coupons {
        if !c.IsUsed {
            n++
        }
    }
    return n
}

// UsedCoupons counts redeemed coupons.
func (u User) UsedCoupons() int {
    return len(u.Coupons) - u.AvailableCoupons()
}
