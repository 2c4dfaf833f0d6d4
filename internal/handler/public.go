package handler

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/coin-rewards/internal/market"
    "github.com/iliyamo/coin-rewards/internal/model"
    "github.com/iliyamo/coin-rewards/internal/purchase"
)

// PublicHandler serves the landing page data.  None of its routes need a
// session.
type PublicHandler struct {
    Purchases *purchase.Service
    Market    *market.Generator
}

func NewPublicHandler(p *purchase.Service, g *market.Generator) *PublicHandler {
    return &PublicHandler{Purchases: p, Market: g}
}

// queryInt parses an optional integer query parameter.
func queryInt(c echo.Context, name string, def int) (int, bool) {
    s := c.QueryParam(name)
    if s == "" {
        return def, true
    }
    n, err := strconv.Atoi(s)
    return n, err == nil
}

// ListPackages returns the coin package catalog.
func (h *PublicHandler) ListPackages(c echo.Context) error {
    return c.JSON(http.StatusOK, echo.Map{"packages": model.Catalog()})
}

func (h *PublicHandler) quote(c echo.Context) (purchase.Quote, error) {
    qty, ok := queryInt(c, "quantity", 1)
    if !ok {
        return purchase.Quote{}, purchase.ErrInvalidQuantity
    }
    return h.Purchases.QuoteByID(c.Param("id"), qty)
}

// Quote prices ?quantity= units of a package and returns the UPI link.
func (h *PublicHandler) Quote(c echo.Context) error {
    q, err := h.quote(c)
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, q)
}

// UPIQRCode renders the UPI link of a quote as a PNG.  ?size= sets the edge
// length in pixels.
func (h *PublicHandler) UPIQRCode(c echo.Context) error {
    q, err := h.quote(c)
    if err != nil {
        return fail(c, err)
    }
    size, ok := queryInt(c, "size", 256)
    if !ok || size < 64 || size > 1024 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "size must be between 64 and 1024"})
    }
    png, err := purchase.QRCode(q, size)
    if err != nil {
        return fail(c, err)
    }
    return c.Blob(http.StatusOK, "image/png", png)
}

// MarketChart returns a simulated price series for ?period= (1H, 1D, 1W,
// 1M or 1Y).
func (h *PublicHandler) MarketChart(c echo.Context) error {
    p, err := market.LookupPeriod(c.QueryParam("period"))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, h.Market.Generate(p))
}

// LiveMarketChart returns the running chart of ?period=, moved by one tick
// per call.
func (h *PublicHandler) LiveMarketChart(c echo.Context) error {
    p, err := market.LookupPeriod(c.QueryParam("period"))
    if err != nil {
        return fail(c, err)
    }
    return c.JSON(http.StatusOK, h.Market.Live(p))
}
