package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest("REQUEST_MINT_NFT/V3", "confirmed", time.Second)
	m.ObserveRequest("REQUEST_MINT_NFT/V3", "confirmed", time.Second)
	m.SetLedgerConnected(true)
	m.ObserveSyncFetch("nfts", SyncSuperseded)

	require.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("REQUEST_MINT_NFT/V3", "confirmed")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ledgerConnected))
	require.Equal(t, 1.0, testutil.ToFloat64(m.syncFetches.WithLabelValues("nfts", SyncSuperseded)))

	m.SetLedgerConnected(false)
	require.Equal(t, 0.0, testutil.ToFloat64(m.ledgerConnected))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("x", "y", time.Millisecond)
	m.SetLedgerConnected(true)
	m.ObserveSyncFetch("account", SyncApplied)
}
