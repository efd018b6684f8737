// Package receipt renders a finalized sale as a printable slip for a
// 40-column receipt printer.
package receipt

import (
	"fmt"
	"strings"

	"github.com/quilang/hardpos/internal/domain/sale"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const width = 40

// Header identifies the store on the slip.
type Header struct {
	StoreName string
	Address   string
	Phone     string
}

// Render formats the sale as plain text. Amounts are stored in
// centavos and printed as grouped peso values.
func Render(h Header, s *sale.Sale) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	writeCentered(&b, strings.ToUpper(h.StoreName))
	writeCentered(&b, h.Address)
	writeCentered(&b, h.Phone)
	b.WriteString(rule('-'))

	b.WriteString("Sale: " + s.ID + "\n")
	b.WriteString("Date: " + s.Date.UTC().Format("2006-01-02 15:04") + "\n")
	b.WriteString(rule('-'))

	for _, line := range s.Lines {
		b.WriteString(line.Name + "\n")
		left := fmt.Sprintf("  %d %s x %s", line.Quantity, line.Unit, money(p, line.UnitPrice))
		b.WriteString(spread(left, money(p, line.Subtotal())))
	}

	b.WriteString(rule('-'))
	b.WriteString(spread("TOTAL", money(p, s.Total)))
	b.WriteString(rule('='))

	return b.String()
}

func money(p *message.Printer, centavos int64) string {
	return p.Sprintf("%.2f", float64(centavos)/100)
}

func writeCentered(b *strings.Builder, s string) {
	if s == "" {
		return
	}
	pad := (width - len(s)) / 2
	if pad < 0 {
		pad = 0
	}
	b.WriteString(strings.Repeat(" ", pad) + s + "\n")
}

// spread lays out left and right on one line with the right column
// flush to the printer edge.
func spread(left, right string) string {
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right + "\n"
}

func rule(ch byte) string {
	return strings.Repeat(string(ch), width) + "\n"
}
