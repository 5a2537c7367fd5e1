package sentiment

import (
	"math"
	"strings"
)

// DefaultAlpha approximates the maximum expected raw score
const DefaultAlpha = 15.0

// Author is a user with accumulated per-currency sentiment;
// currencies the user never mentioned are absent from Scores
type Author struct {
	ID     string
	Scores map[string]float64
}

// Mean returns average score over the mentioned currencies
func (a Author) Mean() float64 {
	if len(a.Scores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range a.Scores {
		sum += s
	}
	return sum / float64(len(a.Scores))
}

// Centered returns scores shifted by the author's mean
func (a Author) Centered() map[string]float64 {
	mean := a.Mean()
	res := make(map[string]float64, len(a.Scores))
	for name, s := range a.Scores {
		res[name] = s - mean
	}
	return res
}

// RawScore sums lexicon scores of the tokens
func RawScore(tokens []string, lex Lexicon) float64 {
	sum := 0.0
	for _, tok := range tokens {
		sum += lex[strings.ToLower(tok)]
	}
	return sum
}

// Normalize squashes raw score into (-1, 1)
func Normalize(raw, alpha float64) float64 {
	if raw == 0 {
		return 0
	}
	return raw / math.Sqrt(raw*raw+alpha)
}

// Score returns normalized sentiment of the tweet
func Score(tw Tweet, lex Lexicon, alpha float64) float64 {
	return Normalize(RawScore(tw.Tokens, lex), alpha)
}

// GroupByUser accumulates every tweet's score into each currency the tweet
// mentions, once per mention. Tweets without currencies are ignored and users
// left without currencies are omitted. Authors come in first-seen order.
func GroupByUser(ds *Dataset, lex Lexicon, cur *Currencies, alpha float64) []Author {
	authors := make([]Author, 0)
	byUser := make(map[string]int)
	for _, tw := range ds.Tweets {
		mentions := make([]string, 0)
		for _, tok := range tw.Tokens {
			if name, ok := cur.Lookup(tok); ok {
				mentions = append(mentions, name)
			}
		}
		if len(mentions) == 0 {
			continue
		}
		idx, ok := byUser[tw.UserID]
		if !ok {
			idx = len(authors)
			byUser[tw.UserID] = idx
			authors = append(authors, Author{ID: tw.UserID, Scores: make(map[string]float64)})
		}
		score := Score(tw, lex, alpha)
		for _, name := range mentions {
			authors[idx].Scores[name] += score
		}
	}
	return authors
}
