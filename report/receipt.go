package report

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/terrace-erp/terrace/internal/sales"
)

// Receipts builds printable payment receipt markup for PDF rendering.
type Receipts struct {
	companyName string
}

// NewReceipts constructs a receipt builder.
func NewReceipts(companyName string) *Receipts {
	if companyName == "" {
		companyName = "Terrace Real Estate"
	}
	return &Receipts{companyName: companyName}
}

// PaymentReceiptHTML renders a receipt for one obligation of a sale.
func (r *Receipts) PaymentReceiptHTML(sale *sales.Sale, obligation *sales.Obligation) string {
	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="utf-8"><style>
		body { font-family: Helvetica, Arial, sans-serif; margin: 48px; color: #1a1a1a; }
		h1 { font-size: 20px; border-bottom: 2px solid #1a1a1a; padding-bottom: 8px; }
		table { width: 100%; border-collapse: collapse; margin-top: 24px; }
		td { padding: 6px 4px; border-bottom: 1px solid #ddd; }
		td:first-child { color: #666; width: 40%; }
		.footer { margin-top: 48px; font-size: 11px; color: #888; }
	</style></head><body>`)

	fmt.Fprintf(&b, "<h1>%s</h1>", html.EscapeString(r.companyName))
	fmt.Fprintf(&b, "<p>Payment receipt for sale #%d</p>", sale.ID)

	b.WriteString("<table>")
	writeRow(&b, "Description", obligation.Description)
	writeRow(&b, "Installment", fmt.Sprintf("%d of %d", obligation.InstallmentNumber, len(sale.Payments)))
	writeRow(&b, "Due date", obligation.DueDate.Format("2006-01-02"))
	writeRow(&b, "Amount due", fmt.Sprintf("%.2f", obligation.Amount))
	writeRow(&b, "Amount paid", fmt.Sprintf("%.2f", obligation.PaidAmount))
	writeRow(&b, "Remaining", fmt.Sprintf("%.2f", obligation.Remaining()))
	if obligation.PaidDate != nil {
		writeRow(&b, "Paid on", obligation.PaidDate.Format("2006-01-02"))
	}
	if obligation.PaymentMethod != nil {
		writeRow(&b, "Method", *obligation.PaymentMethod)
	}
	writeRow(&b, "Status", string(obligation.Status))
	b.WriteString("</table>")

	fmt.Fprintf(&b, `<p class="footer">Generated %s</p>`, time.Now().UTC().Format(time.RFC3339))
	b.WriteString("</body></html>")
	return b.String()
}

func writeRow(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "<tr><td>%s</td><td>%s</td></tr>", html.EscapeString(label), html.EscapeString(value))
}
