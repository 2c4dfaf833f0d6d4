package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/coin-rewards/internal/purchase"
    "github.com/iliyamo/coin-rewards/internal/session"
)

// PurchaseHandler serves the user-only purchase and coupon endpoints.
type PurchaseHandler struct {
    Sessions  *session.Service
    Purchases *purchase.Service
}

func NewPurchaseHandler(s *session.Service, p *purchase.Service) *PurchaseHandler {
    return &PurchaseHandler{Sessions: s, Purchases: p}
}

type purchaseReq struct {
    PackageID string `json:"package_id"`
    Quantity  int    `json:"quantity"`
}

// Purchase waits for the simulated payment, then credits coins and a coupon
// to the session user.  Each call is a separate purchase.
func (h *PurchaseHandler) Purchase(c echo.Context) error {
    var req purchaseReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.PackageID = strings.TrimSpace(req.PackageID)
    if req.PackageID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "package_id required"})
    }

    ctx, cancel := requestCtx(c)
    defer cancel()

    m, _, err := currentUser(ctx, c, h.Sessions)
    if err != nil {
        return fail(c, err)
    }
    rcpt, err := h.Purchases.Purchase(ctx, m, req.PackageID, req.Quantity)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusCreated, rcpt)
}

// RedeemCoupon marks one of the session user's coupons as used.
func (h *PurchaseHandler) RedeemCoupon(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    m, _, err := currentUser(ctx, c, h.Sessions)
    if err != nil {
        return fail(c, err)
    }
    coupon, err := h.Purchases.Redeem(ctx, m, c.Param("code"))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, coupon)
}
