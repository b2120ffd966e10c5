package discovery_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"

	"github.com/ilhambagus/pos-android-sdk/discovery"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func paymentInfo(id string) discovery.ServiceInfo {
	return discovery.ServiceInfo{
		ID:                    id,
		Type:                  discovery.TypePaymentService,
		DisplayName:           "Card Payments",
		Addr:                  "localhost:1234",
		SupportedRequestTypes: []string{"payment", "reversal"},
		SupportedCurrencies:   []string{"EUR", "GBP"},
		PaymentMethods:        []string{"card"},
		SupportedFlowStages:   []string{"payment"},
	}
}

func flowInfo(id string) discovery.ServiceInfo {
	return discovery.ServiceInfo{
		ID:                    id,
		Type:                  discovery.TypeFlowService,
		DisplayName:           "Loyalty",
		Addr:                  "localhost:4321",
		SupportedRequestTypes: []string{"payment"},
		SupportedCurrencies:   []string{"eur"},
		PaymentMethods:        []string{"loyalty"},
		SupportedFlowStages:   []string{"split"},
	}
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := discovery.NewRegistry(testLogger())

	require.NoError(t, r.Register(paymentInfo("payments")))
	require.NoError(t, r.Register(flowInfo("loyalty")))

	require.Error(t, r.Register(discovery.ServiceInfo{ID: "no-addr"}))

	info, ok := r.Lookup("payments")
	require.True(t, ok)
	require.Equal(t, discovery.TypePaymentService, info.Type)

	require.Len(t, r.PaymentServices().All(), 1)
	require.Len(t, r.FlowServices().All(), 1)

	r.Deregister("payments")
	require.Empty(t, r.PaymentServices().All())
}

func TestRegistry_Subscribe(t *testing.T) {
	r := discovery.NewRegistry(testLogger())

	events, cancel := r.Subscribe()
	defer cancel()

	require.NoError(t, r.Register(paymentInfo("payments")))
	event := <-events
	require.Equal(t, discovery.EventServiceRegistered, event.Type)
	require.Equal(t, "payments", event.Service.ID)

	r.Deregister("payments")
	event = <-events
	require.Equal(t, discovery.EventServiceDeregistered, event.Type)

	// deregistering an unknown id publishes nothing
	r.Deregister("ghost")
	select {
	case e := <-events:
		t.Fatalf("unexpected event %v", e)
	default:
	}

	cancel()
	_, open := <-events
	require.False(t, open)
}

func TestServices_Aggregation(t *testing.T) {
	services := discovery.NewServices([]discovery.ServiceInfo{paymentInfo("payments"), flowInfo("loyalty")})

	require.ElementsMatch(t, []string{"payment", "reversal"}, services.AllSupportedRequestTypes())
	require.ElementsMatch(t, []string{"card", "loyalty"}, services.AllSupportedPaymentMethods())

	// currency comparison ignores case across services
	require.True(t, services.IsCurrencySupported("EUR"))
	require.True(t, services.IsCurrencySupported("eur"))
	require.False(t, services.IsCurrencySupported("USD"))

	require.True(t, services.IsRequestTypeSupported("reversal"))
	require.False(t, services.IsRequestTypeSupported("tokenize"))

	split := services.SupportingStage("split")
	require.Len(t, split, 1)
	require.Equal(t, "loyalty", split[0].ID)

	_, ok := services.ByID("payments")
	require.True(t, ok)
	_, ok = services.ByID("missing")
	require.False(t, ok)
}
