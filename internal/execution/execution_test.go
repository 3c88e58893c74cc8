package execution

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestLiveExecutorRefusesOrders(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	exec := NewLiveExecutor(logger)
	res := exec.Submit(Order{Symbol: "ETH_USDT", Side: Buy, Type: Market, Qty: 1})
	if res.Success {
		t.Fatalf("live submission must be refused")
	}
	if res.Err != "Live trading not implemented" {
		t.Fatalf("unexpected error text: %q", res.Err)
	}
	if !strings.Contains(buf.String(), "ETH_USDT") {
		t.Fatalf("log does not contain symbol: %s", buf.String())
	}
}
