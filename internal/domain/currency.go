package domain

import "fmt"

// CurrencyType is one of the six reward denominations, ordered by value.
type CurrencyType string

const (
	CurrencyCoins      CurrencyType = "COINS"
	CurrencySilverGems CurrencyType = "SILVER_GEMS"
	CurrencyGoldCoins  CurrencyType = "GOLD_COINS"
	CurrencyRubies     CurrencyType = "RUBIES"
	CurrencySapphires  CurrencyType = "SAPPHIRES"
	CurrencyDiamonds   CurrencyType = "DIAMONDS"
)

// Currencies lists all denominations in ascending value order.
var Currencies = []CurrencyType{
	CurrencyCoins,
	CurrencySilverGems,
	CurrencyGoldCoins,
	CurrencyRubies,
	CurrencySapphires,
	CurrencyDiamonds,
}

func (c CurrencyType) Valid() bool {
	switch c {
	case CurrencyCoins, CurrencySilverGems, CurrencyGoldCoins, CurrencyRubies, CurrencySapphires, CurrencyDiamonds:
		return true
	}
	return false
}

func ParseCurrency(s string) (CurrencyType, error) {
	c := CurrencyType(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown currency type %q", s)
	}
	return c, nil
}

// ValueInCoins is the fixed valuation of one unit of each currency in base
// coins. The same table doubles as the experience multiplier for earns.
var ValueInCoins = map[CurrencyType]int64{
	CurrencyCoins:      1,
	CurrencySilverGems: 10,
	CurrencyGoldCoins:  100,
	CurrencyRubies:     500,
	CurrencySapphires:  1000,
	CurrencyDiamonds:   10000,
}

// ConversionPair is a directed exchange between two denominations.
type ConversionPair struct {
	From CurrencyType
	To   CurrencyType
}

// ConversionRates maps each supported pair to its rate: rate units of From
// buy exactly 1 unit of To. Pairs not listed here cannot be converted.
var ConversionRates = map[ConversionPair]int64{
	{CurrencyCoins, CurrencySilverGems}:     10,
	{CurrencySilverGems, CurrencyGoldCoins}: 10,
	{CurrencyGoldCoins, CurrencyRubies}:     5,
	{CurrencyGoldCoins, CurrencySapphires}:  10,
	{CurrencySapphires, CurrencyDiamonds}:   10,
}

// ConversionRate returns the rate for a pair, or false if the pair is not convertible.
func ConversionRate(from, to CurrencyType) (int64, bool) {
	rate, ok := ConversionRates[ConversionPair{From: from, To: to}]
	return rate, ok
}

// ConversionRateTable returns the read-only "{From}_{To}" -> rate view served
// to clients.
func ConversionRateTable() map[string]float64 {
	out := make(map[string]float64, len(ConversionRates))
	for pair, rate := range ConversionRates {
		out[string(pair.From)+"_"+string(pair.To)] = float64(rate)
	}
	return out
}

// ExperienceForLevel returns the total experience required to reach a level.
func ExperienceForLevel(level int) int64 {
	return int64(level) * int64(level) * 100
}
