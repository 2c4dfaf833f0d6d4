package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandleAppendsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "purchases.log")
	pc := &PurchaseConsumer{LogPath: path}
	ev := CoinsPurchasedEvent{
		UserID: "user", UserName: "User", PackageID: "1", PackageName: "Starter Pack",
		Quantity: 2, Amount: 200, Coins: 200, CouponCode: "COINABCD1234", CouponValue: 20,
		Balance: 200, PurchasedAt: "2025-07-01T09:00:00Z",
	}
	body, _ := json.Marshal(ev)
	for i := 0; i < 2; i++ {
		if err := pc.Handle(body); err != nil {
			t.Fatalf("Handle: %v", err)
		}
	}
	bs, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(bs)), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	for _, want := range []string{"user_id=user", `package="Starter Pack" x2`, "coupon=COINABCD1234 (20)", "balance=200"} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("line %q missing %q", lines[0], want)
		}
	}
}

func TestHandleRejectsBadMessages(t *testing.T) {
	pc := &PurchaseConsumer{LogPath: filepath.Join(t.TempDir(), "p.log")}
	if err := pc.Handle([]byte("{nope")); err == nil {
		t.Fatalf("malformed body accepted")
	}
	if err := pc.Handle([]byte(`{"coins":5}`)); err == nil {
		t.Fatalf("event without user accepted")
	}
}
