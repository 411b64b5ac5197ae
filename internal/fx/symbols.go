package fx

import "sort"

// Symbol is one entry of the currency registry served to clients.
type Symbol struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

var symbolNames = map[string]string{
	"AED": "United Arab Emirates Dirham",
	"AUD": "Australian Dollar",
	"BDT": "Bangladeshi Taka",
	"BHD": "Bahraini Dinar",
	"BRL": "Brazilian Real",
	"CAD": "Canadian Dollar",
	"CHF": "Swiss Franc",
	"CNY": "Chinese Yuan",
	"CZK": "Czech Koruna",
	"DKK": "Danish Krone",
	"EGP": "Egyptian Pound",
	"EUR": "Euro",
	"GBP": "British Pound Sterling",
	"HKD": "Hong Kong Dollar",
	"HUF": "Hungarian Forint",
	"IDR": "Indonesian Rupiah",
	"ILS": "Israeli New Shekel",
	"INR": "Indian Rupee",
	"JPY": "Japanese Yen",
	"KRW": "South Korean Won",
	"KWD": "Kuwaiti Dinar",
	"LKR": "Sri Lankan Rupee",
	"MXN": "Mexican Peso",
	"MYR": "Malaysian Ringgit",
	"NOK": "Norwegian Krone",
	"NPR": "Nepalese Rupee",
	"NZD": "New Zealand Dollar",
	"PHP": "Philippine Peso",
	"PKR": "Pakistani Rupee",
	"PLN": "Polish Zloty",
	"QAR": "Qatari Riyal",
	"RUB": "Russian Ruble",
	"SAR": "Saudi Riyal",
	"SEK": "Swedish Krona",
	"SGD": "Singapore Dollar",
	"THB": "Thai Baht",
	"TRY": "Turkish Lira",
	"TWD": "New Taiwan Dollar",
	"USD": "United States Dollar",
	"VND": "Vietnamese Dong",
	"ZAR": "South African Rand",
}

// Symbols returns the registry sorted by code.
func Symbols() []Symbol {
	out := make([]Symbol, 0, len(symbolNames))
	for code, desc := range symbolNames {
		out = append(out, Symbol{Code: code, Description: desc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// SymbolCodes returns the registry codes sorted, excluding the given base.
func SymbolCodes(excludeBase string) []string {
	excludeBase = NormalizeCode(excludeBase)
	out := make([]string, 0, len(symbolNames))
	for code := range symbolNames {
		if code == excludeBase {
			continue
		}
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}
