package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/terrace-erp/terrace/internal/sales"
)

func TestPaymentReceiptHTML(t *testing.T) {
	method := "bank_transfer"
	paid := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	sale := &sales.Sale{
		ID: 42,
		Payments: []sales.Obligation{
			{InstallmentNumber: 1, Description: "Down Payment", Amount: 40000, PaidAmount: 40000, Status: sales.ObligationPaid},
			{InstallmentNumber: 2, Description: "Installment 1", Amount: 10000, PaidAmount: 4000,
				Status: sales.ObligationPartial, PaidDate: &paid, PaymentMethod: &method,
				DueDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)},
		},
	}

	html := NewReceipts("Terrace & Co").PaymentReceiptHTML(sale, &sale.Payments[1])
	require.Contains(t, html, "Terrace &amp; Co")
	require.Contains(t, html, "sale #42")
	require.Contains(t, html, "Installment 1")
	require.Contains(t, html, "2 of 2")
	require.Contains(t, html, "4000.00")
	require.Contains(t, html, "6000.00")
	require.Contains(t, html, "bank_transfer")
}
