package rdp_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-rdp-session/rdp"
	"github.com/stretchr/testify/require"
)

func TestViews(t *testing.T) {
	t.Run("esg", func(t *testing.T) {
		r := rdp.ESGScoresFull("IBM.N")
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "data/environmental-social-governance/v1/views/scores-full", r.URL)
		require.Equal(t, map[string]string{"universe": "IBM.N"}, r.Query)
	})

	t.Run("fundamentals", func(t *testing.T) {
		r := rdp.CompanyFundamentals("IBM.N", 0, -4)
		require.Equal(t, map[string]string{"universe": "IBM.N", "start": "0", "end": "-4"}, r.Query)
	})

	t.Run("business summary", func(t *testing.T) {
		r := rdp.BusinessSummary("IBM.N")
		require.Equal(t, "user-framework/mobile/overview-service/v1/corp/business-summary/IBM.N", r.URL)
		require.Empty(t, r.Query)
	})

	t.Run("historical pricing", func(t *testing.T) {
		start := time.Date(2020, 1, 2, 3, 4, 5, 0, time.FixedZone("X", 3600))
		r := rdp.HistoricalPricingEvents("EUR=", start, 15)
		require.Equal(t, "data/historical-pricing/v1/views/events/EUR=", r.URL)
		require.Equal(t, "exchangeCorrection,manualCorrection", r.Query["adjustments"])
		require.Equal(t, "2020-01-02T02:04:05.000000000Z", r.Query["start"])
		require.Equal(t, "15", r.Query["count"])
	})
}

func TestUniverse(t *testing.T) {
	require.Equal(t, "IBM.N,VOD.L", rdp.Universe("IBM.N", " ", "VOD.L "))
	require.Equal(t, "", rdp.Universe())
}
