// Package catalog loads the course catalog from its JSON source and
// provides the filtering and ordering applied before items reach clients.
package catalog

import (
	"cmp"
	"context"
	json "github.com/go-json-experiment/json"
	"io"
	"net/http"
	"os"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sadhanaapp/sadhana-server/internal/domain"
	"github.com/sadhanaapp/sadhana-server/internal/errors"
)

// SortMode names one of the supported catalog orderings.
type SortMode string

const (
	SortDayAsc    SortMode = "day-asc"
	SortDayDesc   SortMode = "day-desc"
	SortDateAsc   SortMode = "date-asc"
	SortDateDesc  SortMode = "date-desc"
	SortTitleAsc  SortMode = "title-asc"
	SortTitleDesc SortMode = "title-desc"
)

// DefaultSort is the ordering used when a client supplies none.
const DefaultSort = SortDayAsc

// ParseSortMode maps a client-supplied string to a sort mode. Unrecognized
// values fall back to the default rather than erroring.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortDayAsc, SortDayDesc, SortDateAsc, SortDateDesc, SortTitleAsc, SortTitleDesc:
		return SortMode(s)
	default:
		return DefaultSort
	}
}

const fetchTimeout = 30 * time.Second

// Load reads and parses the catalog source, which is either a local file
// path or an http(s) URL. Entries carrying neither a title nor a filename
// are dropped; they cannot produce a usable identity key.
func Load(ctx context.Context, source string) ([]domain.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := readSource(ctx, source)
	if err != nil {
		return nil, err
	}

	var items []domain.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrap(err, errors.CodeSourceUnavailable, "catalog source is not valid JSON")
	}

	kept := make([]domain.Item, 0, len(items))
	for _, it := range items {
		if it.Title == "" && it.Filename == "" {
			continue
		}
		kept = append(kept, it)
	}
	return kept, nil
}

// IsURL reports whether the source is fetched over HTTP rather than read
// from disk. URL sources cannot be watched for changes.
func IsURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func readSource(ctx context.Context, source string) ([]byte, error) {
	if !IsURL(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeSourceUnavailable, "catalog file unreadable")
		}
		return data, nil
	}

	reqCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, source, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSourceUnavailable, "invalid catalog URL")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSourceUnavailable, "catalog fetch failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.SourceUnavailable("catalog fetch returned " + resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeSourceUnavailable, "catalog fetch interrupted")
	}
	return data, nil
}

// Filter returns the items whose search text contains query, compared
// case-insensitively, and, when favoritesOnly is set, whose key is present
// in favs. An empty query matches everything.
func Filter(items []domain.Item, query string, favoritesOnly bool, favs map[string]struct{}) []domain.Item {
	needle := strings.ToLower(strings.TrimSpace(query))

	out := make([]domain.Item, 0, len(items))
	for i := range items {
		it := items[i]
		if favoritesOnly {
			if _, ok := favs[it.Key()]; !ok {
				continue
			}
		}
		if needle != "" && !strings.Contains(strings.ToLower(it.SearchText()), needle) {
			continue
		}
		out = append(out, it)
	}
	return out
}

// Sort orders items in place. Sorts are stable, so ties keep source order.
//
// Title comparisons use a numeric-aware, case-insensitive collation, so
// "Day 2" sorts before "Day 10". Items without a parsable date sort as
// epoch zero, which puts them first ascending.
func Sort(items []domain.Item, mode SortMode) {
	switch mode {
	case SortDayAsc:
		slices.SortStableFunc(items, func(a, b domain.Item) int {
			return cmp.Compare(a.DayOrZero(), b.DayOrZero())
		})
	case SortDayDesc:
		slices.SortStableFunc(items, func(a, b domain.Item) int {
			return cmp.Compare(b.DayOrZero(), a.DayOrZero())
		})
	case SortDateAsc:
		slices.SortStableFunc(items, func(a, b domain.Item) int {
			return cmp.Compare(a.DateMillis(), b.DateMillis())
		})
	case SortDateDesc:
		slices.SortStableFunc(items, func(a, b domain.Item) int {
			return cmp.Compare(b.DateMillis(), a.DateMillis())
		})
	case SortTitleAsc, SortTitleDesc:
		// Collators carry internal buffers, so build one per call instead
		// of sharing across goroutines.
		c := collate.New(language.Und, collate.Loose, collate.Numeric)
		slices.SortStableFunc(items, func(a, b domain.Item) int {
			r := c.CompareString(a.Title, b.Title)
			if mode == SortTitleDesc {
				return -r
			}
			return r
		})
	}
}
