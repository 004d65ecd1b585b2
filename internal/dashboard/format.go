package dashboard

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"tablero/internal/domain"
)

// Formatter renders numbers for one display locale and currency. Grouping
// and decimal marks always follow the locale; only the currency symbol
// comes from the currency.
type Formatter struct {
	printer  *message.Printer
	grapheme string
	decimal  string
	thousand string
}

// NewFormatter returns a formatter for lang that prints amounts in the
// currency with ISO code currency. Unknown codes print the code itself.
func NewFormatter(lang language.Tag, currency string) *Formatter {
	f := &Formatter{
		printer:  message.NewPrinter(lang),
		grapheme: currency,
		decimal:  ",",
		thousand: ".",
	}
	if c := money.GetCurrency(currency); c != nil {
		f.grapheme = c.Grapheme
	}
	base, _ := lang.Base()
	if base.String() == "en" {
		f.decimal, f.thousand = ".", ","
	}
	return f
}

var defaultFormatter = NewFormatter(language.Spanish, "ARS")

// Money formats v as a currency amount with exactly fraction decimals,
// e.g. "$ 1.234,50". Rounding is half away from zero.
func (f *Formatter) Money(v float64, fraction int) string {
	if fraction < 0 {
		fraction = 0
	}
	amount := decimal.NewFromFloat(v).Shift(int32(fraction)).Round(0).IntPart()
	return money.NewFormatter(fraction, f.decimal, f.thousand, f.grapheme, "$ 1").Format(amount)
}

// Price formats v with grouping and at most two decimals, e.g. "71,5".
func (f *Formatter) Price(v float64) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// Nominal formats v as a grouped whole number, e.g. "1.234.567".
func (f *Formatter) Nominal(v float64) string {
	return f.printer.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}

// FormatMoney formats v in pesos with the default formatter.
func FormatMoney(v float64, fraction int) string { return defaultFormatter.Money(v, fraction) }

// FormatPrice formats a price with the default formatter.
func FormatPrice(v float64) string { return defaultFormatter.Price(v) }

// FormatNominal formats a face-value quantity with the default formatter.
func FormatNominal(v float64) string { return defaultFormatter.Nominal(v) }

// FormatDefault is the stringification used when a column has no
// formatter.
func FormatDefault(v domain.Value, _ domain.Row, _ int) string { return v.String() }

// numberOr applies fn to numeric values; other truthy values print as-is
// and everything else prints empty.
func numberOr(fn func(float64) string) func(domain.Value, domain.Row, int) string {
	return func(v domain.Value, _ domain.Row, _ int) string {
		if f, ok := v.Float(); ok {
			return fn(f)
		}
		if v.Truthy() {
			return v.String()
		}
		return ""
	}
}

// textOr prints truthy values in their natural form and anything else empty.
func textOr(v domain.Value, _ domain.Row, _ int) string {
	if v.Truthy() {
		return v.String()
	}
	return ""
}
