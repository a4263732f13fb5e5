// Package chat implements the AI assistant client used by the dashboard.
// It owns its own availability probe, independent of the market-data
// monitor, and degrades to a local keyword-matched response table when the
// remote assistant is unreachable.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"stocklens/internal/health"
)

// AskTimeout bounds a single remote assistant call. Model responses are
// slow compared to quote fetches, so this is deliberately generous.
const AskTimeout = 10 * time.Second

// Asker is the remote assistant endpoint; pkg/stocklens.Client implements
// it.
type Asker interface {
	Ask(ctx context.Context, message string) (string, error)
}

var sampleResponses = map[string]string{
	"sentiment": "Based on our analysis, TSLA has a **65% bullish sentiment** today. Social media mentions are up 23% with mostly positive reactions to recent delivery numbers.",
	"outlook":   "AAPL shows a **strong long-term outlook**. Our ML models predict a 12% upside over the next 6 months based on revenue growth, service expansion, and AI integration.",
	"buy":       "For your risk profile, consider: **MSFT** (stable growth), **NVDA** (AI momentum), or **V** (defensive play). Always diversify and consult a financial advisor.",
	"default":   "I can help you with:\n- Stock sentiment analysis\n- Price predictions\n- Technical analysis\n- Portfolio suggestions\n\nTry asking about a specific stock!",
}

// Assistant routes user messages to the remote assistant when its health
// probe says it is up, and to the canned table otherwise. A failed remote
// call flips the availability flag so subsequent messages go straight to
// the canned path until the next probe.
type Assistant struct {
	asker   Asker
	monitor *health.Monitor
	log     *slog.Logger
}

func NewAssistant(asker Asker, monitor *health.Monitor, log *slog.Logger) *Assistant {
	return &Assistant{
		asker:   asker,
		monitor: monitor,
		log:     log.With("component", "chat"),
	}
}

// Available reports whether the last probe or call found the remote
// assistant reachable.
func (a *Assistant) Available() bool {
	return a.monitor.Available()
}

// Probe runs the assistant's own health check and records the result.
func (a *Assistant) Probe(ctx context.Context) bool {
	return a.monitor.Check(ctx)
}

// Send answers a user message. The returned bool reports whether the
// answer came from the live assistant (true) or the local table (false).
// Send never fails; every path yields a displayable reply.
func (a *Assistant) Send(ctx context.Context, message string) (string, bool) {
	if a.monitor.Available() {
		callCtx, cancel := context.WithTimeout(ctx, AskTimeout)
		reply, err := a.asker.Ask(callCtx, message)
		cancel()
		if err == nil && reply != "" {
			return reply, true
		}
		a.log.Warn("assistant call failed, switching to canned responses", "error", err)
		a.monitor.MarkUnavailable()
	}
	return CannedResponse(message), false
}

// CannedResponse picks a reply from the local table by keyword. Unmatched
// messages get the generic capabilities blurb.
func CannedResponse(message string) string {
	m := strings.ToLower(message)
	switch {
	case strings.Contains(m, "sentiment") || strings.Contains(m, "tsla"):
		return sampleResponses["sentiment"]
	case strings.Contains(m, "outlook") || strings.Contains(m, "aapl") || strings.Contains(m, "long"):
		return sampleResponses["outlook"]
	case strings.Contains(m, "buy") || strings.Contains(m, "invest") || strings.Contains(m, "recommend"):
		return sampleResponses["buy"]
	default:
		return sampleResponses["default"]
	}
}
