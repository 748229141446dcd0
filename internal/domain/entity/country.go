package entity

import (
	"sort"
	"strings"
)

// DefaultCountry is used when a request does not name a country.
const DefaultCountry = "us"

// unknownFlag is shown for codes that cannot be rendered as a flag.
const unknownFlag = "🏳️"

// Country is a market the headline feed can be requested for.
type Country struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var supportedCountries = map[string]string{
	"ae": "United Arab Emirates", "ar": "Argentina", "at": "Austria", "au": "Australia",
	"be": "Belgium", "bg": "Bulgaria", "br": "Brazil", "ca": "Canada",
	"ch": "Switzerland", "cn": "China", "co": "Colombia", "cu": "Cuba",
	"cz": "Czechia", "de": "Germany", "eg": "Egypt", "fr": "France",
	"gb": "United Kingdom", "gr": "Greece", "hk": "Hong Kong", "hu": "Hungary",
	"id": "Indonesia", "ie": "Ireland", "il": "Israel", "in": "India",
	"it": "Italy", "jp": "Japan", "kr": "South Korea", "lt": "Lithuania",
	"lv": "Latvia", "ma": "Morocco", "mx": "Mexico", "my": "Malaysia",
	"ng": "Nigeria", "nl": "Netherlands", "no": "Norway", "nz": "New Zealand",
	"ph": "Philippines", "pl": "Poland", "pt": "Portugal", "ro": "Romania",
	"rs": "Serbia", "ru": "Russia", "sa": "Saudi Arabia", "se": "Sweden",
	"sg": "Singapore", "si": "Slovenia", "sk": "Slovakia", "th": "Thailand",
	"tr": "Turkey", "tw": "Taiwan", "ua": "Ukraine", "us": "United States",
	"ve": "Venezuela", "za": "South Africa",
}

// SupportedCountries returns the markets sorted by code.
func SupportedCountries() []Country {
	out := make([]Country, 0, len(supportedCountries))
	for code, name := range supportedCountries {
		out = append(out, Country{Code: code, Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// NormalizeCountry lower-cases code and falls back to DefaultCountry when empty.
// An unsupported code yields a ValidationError.
func NormalizeCountry(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return DefaultCountry, nil
	}
	if _, ok := supportedCountries[code]; !ok {
		return "", &ValidationError{Field: "country", Message: "country is not supported"}
	}
	return code, nil
}

// FlagEmoji converts a two-letter country code into its regional-indicator flag.
func FlagEmoji(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 2 {
		return unknownFlag
	}
	var b strings.Builder
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return unknownFlag
		}
		b.WriteRune(0x1F1E6 + (r - 'A'))
	}
	return b.String()
}
