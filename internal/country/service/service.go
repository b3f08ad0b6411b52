// Package service derives the country list from CLDR data bundled with
// golang.org/x/text. Nothing is stored; names are localized per request.
package service

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"storefront/internal/country/models"
	dErrors "storefront/pkg/domain-errors"
	"storefront/pkg/requestcontext"
)

// continents are UN M.49 macro regions in lookup order.
var continents = []language.Region{
	language.MustParseRegion("002"), // Africa
	language.MustParseRegion("019"), // Americas
	language.MustParseRegion("142"), // Asia
	language.MustParseRegion("150"), // Europe
	language.MustParseRegion("009"), // Oceania
}

type entry struct {
	region    language.Region
	currency  string
	continent *language.Region
}

type Service struct {
	entries map[string]entry
	logger  *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New enumerates every two-letter region that CLDR treats as a country.
func New(opts ...Option) *Service {
	s := &Service{entries: make(map[string]entry), logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	for a := 'A'; a <= 'Z'; a++ {
		for b := 'A'; b <= 'Z'; b++ {
			code := string([]rune{a, b})
			region, err := language.ParseRegion(code)
			if err != nil || !region.IsCountry() || region.String() != code {
				continue
			}
			e := entry{region: region}
			if unit, ok := currency.FromRegion(region); ok {
				e.currency = unit.String()
			}
			for i := range continents {
				if continents[i].Contains(region) {
					e.continent = &continents[i]
					break
				}
			}
			s.entries[code] = e
		}
	}
	s.logger.Debug("country catalog loaded", "count", len(s.entries))
	return s
}

// List filters by code or localized name and sorts by name using the
// request language's collation.
func (s *Service) List(ctx context.Context, q string, offset, limit int) (*models.CountryPage, error) {
	tag := language.Make(requestcontext.Language(ctx))
	namer := display.Regions(tag)
	q = strings.ToLower(strings.TrimSpace(q))

	matched := make([]models.Country, 0, len(s.entries))
	for code, e := range s.entries {
		c := localize(code, e, namer)
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) && strings.ToLower(code) != q {
			continue
		}
		matched = append(matched, c)
	}
	col := collate.New(tag, collate.IgnoreCase)
	sortByName(col, matched)

	total := len(matched)
	start := min(max(offset, 0), total)
	end := min(start+max(limit, 0), total)
	return &models.CountryPage{Items: matched[start:end], Total: total}, nil
}

// Get looks up a country by code, case-insensitively.
func (s *Service) Get(ctx context.Context, code string) (*models.Country, error) {
	code = strings.ToUpper(code)
	e, ok := s.entries[code]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "Country not found")
	}
	c := localize(code, e, display.Regions(language.Make(requestcontext.Language(ctx))))
	return &c, nil
}

func localize(code string, e entry, namer display.Namer) models.Country {
	c := models.Country{Code: code, Currency: e.currency, Name: code}
	if name := namer.Name(e.region); name != "" {
		c.Name = name
	}
	if e.continent != nil {
		c.Region = namer.Name(*e.continent)
	}
	return c
}

func sortByName(col *collate.Collator, countries []models.Country) {
	slices.SortFunc(countries, func(a, b models.Country) int {
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Code, b.Code)
	})
}
