// Copyright 2025 The LaneDist Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"strings"

	"github.com/jcodagnone/lanedist/utils/textutils"
)

// iso2ByName maps folded country names and common aliases to ISO 3166-1
// alpha-2 codes. Covers the countries seen in lane data; an unrecognized
// name simply means no country filter, never an error.
var iso2ByName = map[string]string{
	"ARGENTINA":            "AR",
	"AUSTRALIA":            "AU",
	"AUSTRIA":              "AT",
	"BELGIUM":              "BE",
	"BRAZIL":               "BR",
	"BRASIL":               "BR",
	"CANADA":               "CA",
	"CHILE":                "CL",
	"CHINA":                "CN",
	"COLOMBIA":             "CO",
	"CZECH REPUBLIC":       "CZ",
	"CZECHIA":              "CZ",
	"DENMARK":              "DK",
	"EGYPT":                "EG",
	"FINLAND":              "FI",
	"FRANCE":               "FR",
	"GERMANY":              "DE",
	"GREAT BRITAIN":        "GB",
	"GREECE":               "GR",
	"HOLLAND":              "NL",
	"HONG KONG":            "HK",
	"HUNGARY":              "HU",
	"INDIA":                "IN",
	"INDONESIA":            "ID",
	"IRELAND":              "IE",
	"ISRAEL":               "IL",
	"ITALY":                "IT",
	"JAPAN":                "JP",
	"KOREA":                "KR",
	"MALAYSIA":             "MY",
	"MEXICO":               "MX",
	"NETHERLANDS":          "NL",
	"NEW ZEALAND":          "NZ",
	"NORWAY":               "NO",
	"PANAMA":               "PA",
	"PERU":                 "PE",
	"PHILIPPINES":          "PH",
	"POLAND":               "PL",
	"PORTUGAL":             "PT",
	"ROMANIA":              "RO",
	"SAUDI ARABIA":         "SA",
	"SINGAPORE":            "SG",
	"SOUTH AFRICA":         "ZA",
	"SOUTH KOREA":          "KR",
	"SPAIN":                "ES",
	"SWEDEN":               "SE",
	"SWITZERLAND":          "CH",
	"TAIWAN":               "TW",
	"THAILAND":             "TH",
	"TURKEY":               "TR",
	"UAE":                  "AE",
	"UK":                   "GB",
	"UNITED ARAB EMIRATES": "AE",
	"UNITED KINGDOM":       "GB",
	"UNITED STATES":        "US",
	"URUGUAY":              "UY",
	"USA":                  "US",
	"US":                   "US",
	"VIETNAM":              "VN",
}

// isAlpha reports whether the string consists of ASCII letters only.
func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < 'a' || r > 'z') {
			return false
		}
	}

	return len(s) > 0
}

// ISO2 resolves a country string to a 2-letter code when recognizable.
// Accepts full names, common aliases, and already-ISO2 inputs. Returns ""
// for anything it cannot place.
func ISO2(country string) string {
	folded := textutils.NormalizeKey(country)
	if folded == "" {
		return ""
	}

	if iso2, ok := iso2ByName[folded]; ok {
		return iso2
	}

	// Bare two-letter strings are assumed to already be ISO2. "Chicago, US"
	// style queries are the common case in lane data.
	if len(folded) == 2 && isAlpha(folded) {
		return strings.ToUpper(folded)
	}

	return ""
}
