// Package rdp builds requests for the platform data views used by the demo.
// It only shapes requests; responses are returned to the caller untouched.
package rdp

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-rdp-session/session"
)

const (
	esgScoresFullPath       = "data/environmental-social-governance/v1/views/scores-full"
	fundamentalsPath        = "data/company-fundamentals/beta1/views/operating-metrics-brief/standardized"
	businessSummaryPath     = "user-framework/mobile/overview-service/v1/corp/business-summary/"
	historicalEventsPath    = "data/historical-pricing/v1/views/events/"
	defaultPricingAdjusters = "exchangeCorrection,manualCorrection"
)

// ESGScoresFull requests the full ESG score view for universe.
func ESGScoresFull(universe string) session.Request {
	return session.Get(esgScoresFullPath, map[string]string{"universe": universe})
}

// CompanyFundamentals requests the standardized operating metrics for
// universe between the relative periods start and end (e.g. 0 and -4 for the
// last five financial years).
func CompanyFundamentals(universe string, start, end int) session.Request {
	return session.Get(fundamentalsPath, map[string]string{
		"universe": universe,
		"start":    strconv.Itoa(start),
		"end":      strconv.Itoa(end),
	})
}

// BusinessSummary requests the business summary of universe, which is part of
// the path rather than a query parameter.
func BusinessSummary(universe string) session.Request {
	return session.Get(businessSummaryPath+url.PathEscape(universe), nil)
}

// HistoricalPricingEvents requests up to count pricing events for ric from start.
func HistoricalPricingEvents(ric string, start time.Time, count int) session.Request {
	return session.Get(historicalEventsPath+url.PathEscape(ric), map[string]string{
		"adjustments": defaultPricingAdjusters,
		"start":       start.UTC().Format("2006-01-02T15:04:05.000000000Z"),
		"count":       strconv.Itoa(count),
	})
}

// Universe joins several instruments into the comma separated form the views accept.
func Universe(instruments ...string) string {
	out := make([]string, 0, len(instruments))
	for _, i := range instruments {
		if i = strings.TrimSpace(i); i != "" {
			out = append(out, i)
		}
	}
	return strings.Join(out, ",")
}
