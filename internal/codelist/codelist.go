// Package codelist answers whether currency and country codes appear in the ISO 4217 and
// ISO 3166-1 code lists.
//
// The lookups use the static tables compiled into golang.org/x/text; nothing is loaded at
// runtime and no network access happens. The Is*Shape helpers only check the letter pattern and
// are used when checking API input.
package codelist

import (
	"regexp"
	"strings"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

var threeLetters = regexp.MustCompile(`^[A-Z]{3}$`)

// IsCurrencyShape reports whether code consists of exactly three upper-case ASCII letters.
func IsCurrencyShape(code string) bool {
	return threeLetters.MatchString(code)
}

// IsCountryShape reports whether code looks like an ISO 3166-1 alpha-3 code.
func IsCountryShape(code string) bool {
	return threeLetters.MatchString(code)
}

// IsValidCurrencyCode reports whether code is a current ISO 4217 alphabetic code.
// The check is case-insensitive. Withdrawn codes such as DEM are rejected; fund and testing
// codes (USN, XTS) stay valid as they are part of the ISO 4217 list.
func IsValidCurrencyCode(code string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if !IsCurrencyShape(normalized) {
		return false
	}
	if _, err := currency.ParseISO(normalized); err != nil {
		return false
	}
	_, gone := withdrawnCurrencies[normalized]
	return !gone
}

// withdrawnCurrencies holds codes that were used in some region but are no longer in use
// anywhere.
var withdrawnCurrencies = func() map[string]struct{} {
	now := time.Now()
	seen := make(map[string]bool)
	for it := currency.Query(currency.Historical, currency.NonTender); it.Next(); {
		code := it.Unit().String()
		to, ended := it.To()
		current := !ended || to.After(now)
		seen[code] = seen[code] || current
	}

	withdrawn := make(map[string]struct{})
	for code, current := range seen {
		if !current {
			withdrawn[code] = struct{}{}
		}
	}
	return withdrawn
}()

// IsValidCountryCode reports whether code is an assigned ISO 3166-1 alpha-2 or alpha-3 code.
// Numeric codes, private-use codes (AA, QM-QZ, XA-XZ, ZZ), macro-regions, exceptional
// reservations and withdrawn codes are rejected.
func IsValidCountryCode(code string) bool {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if len(normalized) != 2 && len(normalized) != 3 {
		return false
	}
	for _, r := range normalized {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	if _, excluded := notCountries[normalized]; excluded {
		return false
	}

	region, err := language.ParseRegion(normalized)
	if err != nil || !region.IsCountry() || region.IsPrivateUse() {
		return false
	}

	// ParseRegion maps deprecated codes onto current regions, so the code must read back unchanged.
	if len(normalized) == 2 {
		return region.String() == normalized
	}
	return region.ISO3() == normalized
}

// notCountries lists codes the region tables know that are not assigned ISO 3166-1 countries:
// exceptional reservations and the codes withdrawn into ISO 3166-3. Alpha-2 codes that were
// withdrawn and later reassigned (AI, BQ, BY, GE, SK) are not listed.
var notCountries = toSet(
	// exceptional and transitional reservations
	"UN", "EU", "EZ", "UK", "AC", "CP", "DG", "EA", "IC", "TA",
	// withdrawn alpha-2
	"AN", "BU", "CS", "CT", "DD", "DY", "FX", "HV", "JT", "MI", "NH", "NQ", "NT", "PC",
	"PU", "PZ", "RH", "SU", "TP", "VD", "WK", "YD", "YU", "ZR",
	// withdrawn alpha-3
	"AFI", "ANT", "ATB", "ATN", "BUR", "BYS", "CSK", "CTE", "DDR", "DHY", "FXX", "GEL",
	"HVO", "JTN", "MID", "NHB", "NTZ", "PCI", "PCZ", "PUS", "RHO", "SCG", "SKM", "SUN",
	"TMP", "VDR", "WAK", "YMD", "YUG", "ZAR",
)

func toSet(codes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[c] = struct{}{}
	}
	return set
}
