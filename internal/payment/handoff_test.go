package payment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogHandoff_RequestPayment(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewLogHandoff("CAD", zap.New(core))

	req := Request{
		ReservationID: uuid.New(),
		Reference:     "10,11,12",
		BookingIDs:    []int64{10, 11, 12},
		TotalCents:    7500,
	}
	require.NoError(t, h.RequestPayment(context.Background(), req))

	entries := logs.FilterMessage("Payment requested").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	require.Equal(t, "10,11,12", fields["reference"])
	require.Equal(t, int64(7500), fields["total_cents"])
	require.Equal(t, "CAD", fields["currency"])
	require.Equal(t, req.ReservationID.String(), fields["reservation_id"])
}

func TestLogHandoff_KeepsRequestCurrency(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewLogHandoff("CAD", zap.New(core))

	require.NoError(t, h.RequestPayment(context.Background(), Request{Currency: "JPY"}))
	require.Equal(t, "JPY", logs.All()[0].ContextMap()["currency"])
}
