package validate

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"avtosotuv/internal/domain"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50
	MaxPage      = math.MaxInt32
	maxSearch    = 100
)

var (
	reID       = regexp.MustCompile(`^[0-9]{1,18}$`)
	reImageURL = regexp.MustCompile(`^(/[A-Za-z0-9._-]+(/[A-Za-z0-9._-]+)*|https?://\S+)$`)
)

// ID parses a positive numeric resource id.
func ID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if !reID.MatchString(s) {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	return n, err == nil && n > 0
}

// Text trims s and enforces a non-empty value of at most max runes.
func Text(s string, max int) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > max {
		return "", false
	}
	return s, true
}

// Search trims a free-text query and cuts it to a sane length.
func Search(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxSearch {
		s = string([]rune(s)[:maxSearch])
	}
	return s
}

// OptInt parses an optional non-negative integer query param. Empty is (0, true).
func OptInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Page falls back to 1 on anything that is not a positive integer and caps at MaxPage.
func Page(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 1
	}
	return min(n, MaxPage)
}

// Limit defaults to DefaultLimit and clamps to MaxLimit.
func Limit(n int) int {
	if n < 1 {
		return DefaultLimit
	}
	if n > MaxLimit {
		return MaxLimit
	}
	return n
}

func LimitParam(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return DefaultLimit
	}
	return Limit(n)
}

// Sort maps unknown values to newest-first.
func Sort(s string) domain.SortOrder {
	switch domain.SortOrder(strings.TrimSpace(s)) {
	case domain.SortCheapest:
		return domain.SortCheapest
	case domain.SortExpensive:
		return domain.SortExpensive
	}
	return domain.SortNewest
}

// ImageURLs checks count and shape of the urls returned by the upload endpoint.
func ImageURLs(urls []string, max int) ([]string, bool) {
	if len(urls) == 0 || len(urls) > max {
		return nil, false
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if len(u) > 512 || !reImageURL.MatchString(u) || strings.Contains(u, "..") {
			return nil, false
		}
		out = append(out, u)
	}
	return out, true
}

// FlexInt accepts a JSON number or a numeric string; forms post strings.
type FlexInt struct {
	Value int64
	Set   bool
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var raw string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &raw); err != nil {
			return err
		}
	} else {
		raw = string(b)
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// keep Set=false so field checks report it as missing
		return nil
	}
	f.Value, f.Set = n, true
	return nil
}
