package sentiment

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Lexicon maps lowercased words to their sentiment scores
type Lexicon map[string]float64

// Currencies maps lowercased aliases (canonical name included) to the canonical currency name
type Currencies struct {
	alias map[string]string
	names []string
}

// Tweet is a single tokenized post
type Tweet struct {
	UserID string
	ID     string
	Tokens []string
}

// Dataset holds all tweets of the input file
type Dataset struct {
	Tweets []Tweet
	// NeighborsHint is the neighbors number from the optional "P: <n>" header, 0 if absent
	NeighborsHint int
}

func newTSVReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	return reader
}

// readRecords reads non-empty tab-separated records and passes them to fn with their line number
func readRecords(r io.Reader, fn func(line int, record []string) error) error {
	reader := newTSVReader(r)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}
		line, _ := reader.FieldPos(0)
		if err := fn(line, record); err != nil {
			return err
		}
	}
}

// LoadLexicon reads "word<TAB>score" lines
func LoadLexicon(r io.Reader) (Lexicon, error) {
	lex := make(Lexicon)
	err := readRecords(r, func(line int, record []string) error {
		if len(record) < 2 {
			return fmt.Errorf("lexicon line %d: expected word and score, got %d fields", line, len(record))
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			return fmt.Errorf("lexicon line %d: %w", line, err)
		}
		lex[strings.ToLower(strings.TrimSpace(record[0]))] = score
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lex, nil
}

// LoadCurrencies reads lines with the canonical currency name in the first
// field followed by its aliases
func LoadCurrencies(r io.Reader) (*Currencies, error) {
	cur := &Currencies{alias: make(map[string]string)}
	seen := make(map[string]bool)
	err := readRecords(r, func(line int, record []string) error {
		name := strings.TrimSpace(record[0])
		if len(name) == 0 {
			return fmt.Errorf("currencies line %d: empty currency name", line)
		}
		if !seen[name] {
			seen[name] = true
			cur.names = append(cur.names, name)
		}
		for _, alias := range record {
			alias = strings.ToLower(strings.TrimSpace(alias))
			if len(alias) > 0 {
				cur.alias[alias] = name
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(cur.names)
	return cur, nil
}

// Lookup returns canonical currency name of the token
func (c *Currencies) Lookup(token string) (string, bool) {
	name, ok := c.alias[strings.ToLower(token)]
	return name, ok
}

// Names returns canonical currency names in sorted order
func (c *Currencies) Names() []string {
	names := make([]string, len(c.names))
	copy(names, c.names)
	return names
}

// ReadTweets reads "user_id<TAB>tweet_id<TAB>token..." lines;
// the first line may be the "P: <n>" neighbors header
func ReadTweets(r io.Reader) (*Dataset, error) {
	ds := &Dataset{}
	first := true
	err := readRecords(r, func(line int, record []string) error {
		if first {
			first = false
			head := strings.TrimSpace(record[0])
			if strings.HasPrefix(head, "P:") {
				n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(head, "P:")))
				if err != nil || n <= 0 {
					return fmt.Errorf("dataset line %d: bad neighbors header %q", line, head)
				}
				ds.NeighborsHint = n
				return nil
			}
		}
		if len(record) < 2 {
			return fmt.Errorf("dataset line %d: expected user id and tweet id, got %d fields", line, len(record))
		}
		tokens := make([]string, 0, len(record)-2)
		for _, tok := range record[2:] {
			if tok = strings.TrimSpace(tok); len(tok) > 0 {
				tokens = append(tokens, tok)
			}
		}
		ds.Tweets = append(ds.Tweets, Tweet{
			UserID: strings.TrimSpace(record[0]),
			ID:     strings.TrimSpace(record[1]),
			Tokens: tokens,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}
