package expense

import (
	"strconv"
	"time"
)

// Defaults for a freshly created (or reset) expense record.
const (
	DefaultCurrency = "USD"
	DefaultAmount   = "0.00"
)

// Categories is the closed set of business-expense categories.
var Categories = []string{
	"Air Transportation",
	"Communications",
	"Meals",
	"Entertainment",
	"Equipment",
	"Ground Transportation",
	"Insurance",
	"Legal",
	"Other",
	"Travel",
}

// Currencies is the closed set of currency codes an expense may carry.
var Currencies = []string{
	"AED", "AFN", "ALL", "AMD", "ANG", "AOA", "ARS", "AUD", "AWG", "AZN",
	"BAM", "BBD", "BDT", "BGN", "BHD", "BIF", "BMD", "BND", "BOB", "BRL",
	"BSD", "BTN", "BWP", "BYN", "BZD", "CAD", "CDF", "CHF", "CLP", "CNY",
	"COP", "CRC", "CUC", "CUP", "CVE", "CZK", "DJF", "DKK", "DOP", "DZD",
	"EGP", "ERN", "ETB", "EUR", "FJD", "FKP", "GBP", "GEL", "GGP", "GHS",
	"GIP", "GMD", "GNF", "GTQ", "GYD", "HKD", "HNL", "HRK", "HTG", "HUF",
	"IDR", "ILS", "IMP", "INR", "IQD", "IRR", "ISK", "JEP", "JMD", "JOD",
	"JPY", "KES", "KGS", "KHR", "KMF", "KPW", "KRW", "KWD", "KYD", "KZT",
	"LAK", "LBP", "LKR", "LRD", "LSL", "LYD", "MAD", "MDL", "MGA", "MKD",
	"MMK", "MNT", "MOP", "MRU", "MUR", "MVR", "MWK", "MXN", "MYR", "MZN",
	"NAD", "NGN", "NIO", "NOK", "NPR", "NZD", "OMR", "PAB", "PEN", "PGK",
	"PHP", "PKR", "PLN", "PYG", "QAR", "RON", "RSD", "RUB", "RWF", "SAR",
	"SBD", "SCR", "SDG", "SEK", "SGD", "SHP", "SLL", "SOS", "SPL", "SRD",
	"STN", "SVC", "SYP", "SZL", "THB", "TJS", "TMT", "TND", "TOP", "TRY",
	"TTD", "TVD", "TWD", "TZS", "UAH", "UGX", "USD", "UYU", "UZS", "VEF",
	"VND", "VUV", "WST", "XAF", "XCD", "XDR", "XOF", "XPF", "YER", "ZAR",
	"ZMW", "ZWD",
}

var (
	categorySet = toSet(Categories)
	currencySet = toSet(Currencies)
)

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// ValidCategory reports whether category is a member of the closed set.
func ValidCategory(category string) bool {
	_, ok := categorySet[category]
	return ok
}

// ValidCurrency reports whether currency is a member of the closed set.
func ValidCurrency(currency string) bool {
	_, ok := currencySet[currency]
	return ok
}

// validAmount reports whether amount is a non-negative plain decimal
// string. Signs, exponent notation and non-finite spellings like "Inf"
// are rejected up front; ParseFloat then rules out stray dots.
func validAmount(amount string) bool {
	if amount == "" {
		return false
	}
	for _, r := range amount {
		if (r < '0' || r > '9') && r != '.' {
			return false
		}
	}
	f, err := strconv.ParseFloat(amount, 64)
	return err == nil && f >= 0
}

// Fields is the editable expense record. Category may be empty (unset),
// Date is nil when unset.
type Fields struct {
	Merchant string     `json:"merchant"`
	Category string     `json:"category"`
	Currency string     `json:"currency"`
	Amount   string     `json:"amount"`
	Date     *time.Time `json:"date,omitempty"`
}

func defaultFields() Fields {
	return Fields{
		Currency: DefaultCurrency,
		Amount:   DefaultAmount,
	}
}

// Document is one uploaded file owned by a session.
type Document struct {
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"data,omitempty"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}
