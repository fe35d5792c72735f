// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"sort"
	"strings"
)

// Provider names the vendor integration a bridge talks to.
type Provider string

const (
	ProviderArris   Provider = "arris_dcx960"
	ProviderHorizon Provider = "lghorizon"
)

// Known reports whether p is a supported provider.
func (p Provider) Known() bool {
	return p == ProviderArris || p == ProviderHorizon
}

// StripsChannelQuality reports whether the provider honours
// omitChannelQuality. Horizon lineups are always shown verbatim.
func (p Provider) StripsChannelQuality() bool {
	return p == ProviderArris
}

type country struct {
	name string
	code string
}

var arrisCountries = []country{
	{"Ziggo", "nl"},
	{"Telenet (BE)", "be-nl"},
	{"Telenet (BE, PREPROD)", "be-nl-preprod"},
	{"Telenet (FR)", "be-fr"},
	{"Magenta", "at"},
	{"UPC Switzerland", "ch"},
	{"Virgin Media (GB)", "gb"},
	{"Virgin Media (GB, PREPROD)", "gb-preprod"},
	{"Virgin Media (IE)", "ie"},
}

var horizonCountries = []country{
	{"Ziggo", "nl"},
	{"Telenet (BE)", "be-nl"},
	{"Telenet (BE, PREPROD)", "be-nl-preprod"},
	{"Magenta", "at"},
	{"UPC Switzerland", "ch"},
	{"Virgin Media (GB)", "gb"},
	{"Virgin Media (IE)", "ie"},
	{"UPC (PL)", "pl"},
}

func countriesFor(p Provider) []country {
	switch p {
	case ProviderArris:
		return arrisCountries
	case ProviderHorizon:
		return horizonCountries
	default:
		return nil
	}
}

// Countries returns the display names offered for p, in table order.
func Countries(p Provider) []string {
	table := countriesFor(p)
	names := make([]string, 0, len(table))
	for _, c := range table {
		names = append(names, c.name)
	}
	return names
}

// CountryCode resolves a display name (or an already resolved code) to the
// provider's country code.
func CountryCode(p Provider, nameOrCode string) (string, error) {
	table := countriesFor(p)
	if table == nil {
		return "", fmt.Errorf("unknown provider %q", p)
	}
	for _, c := range table {
		if c.name == nameOrCode || c.code == nameOrCode {
			return c.code, nil
		}
	}
	valid := Countries(p)
	sort.Strings(valid)
	return "", fmt.Errorf("unknown country %q for %s (valid: %s)", nameOrCode, p, strings.Join(valid, ", "))
}
