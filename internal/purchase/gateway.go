package purchase

import (
	"context"
	"time"

	qrcode "github.com/skip2/go-qrcode"
)

// Gateway confirms that the payment for a quote went through.
type Gateway interface {
	Confirm(ctx context.Context, q Quote) error
}

// SimulatedGateway approves every payment after Delay.  There is no real
// verification; cancelling ctx aborts the wait and nothing is credited.
type SimulatedGateway struct {
	Delay time.Duration
}

func (g SimulatedGateway) Confirm(ctx context.Context, _ Quote) error {
	if g.Delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(g.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// QRCode renders the UPI link of q as a PNG of size×size pixels.
func QRCode(q Quote, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(q.UPILink, qrcode.Medium, size)
}
