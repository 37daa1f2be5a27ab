package news

import (
	"strings"
	"unicode"
)

var positiveTerms = map[string]bool{
	"beat": true, "beats": true, "surge": true, "surges": true, "soar": true, "soars": true,
	"rally": true, "rallies": true, "gain": true, "gains": true, "jump": true, "jumps": true,
	"record": true, "upgrade": true, "upgraded": true, "outperform": true, "bullish": true,
	"growth": true, "profit": true, "profits": true, "strong": true, "raises": true,
	"buyback": true, "dividend": true, "expands": true, "wins": true, "rebound": true,
	"tops": true, "optimistic": true, "boost": true, "boosts": true,
}

var negativeTerms = map[string]bool{
	"miss": true, "misses": true, "plunge": true, "plunges": true, "slump": true, "slumps": true,
	"fall": true, "falls": true, "drop": true, "drops": true, "downgrade": true,
	"downgraded": true, "underperform": true, "bearish": true, "loss": true, "losses": true,
	"weak": true, "cuts": true, "lawsuit": true, "investigation": true, "recall": true, "layoffs": true,
	"warning": true, "warns": true, "decline": true, "declines": true, "fraud": true,
	"bankruptcy": true, "tumble": true, "tumbles": true, "sinks": true,
}

// ScoreText rates text in [-1, 1] as (positive - negative) / (positive + negative)
// matched terms. Text without any matched term scores 0.
func ScoreText(text string) float64 {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	pos, neg := 0, 0
	for _, w := range words {
		switch {
		case positiveTerms[w]:
			pos++
		case negativeTerms[w]:
			neg++
		}
	}

	if pos+neg == 0 {
		return 0
	}
	return float64(pos-neg) / float64(pos+neg)
}
