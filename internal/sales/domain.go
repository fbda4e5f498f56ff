package sales

import (
	"time"
)

// PaymentPlan enumerates the supported payment plans. Values are part of the
// wire contract consumed by the frontend and must not change.
type PaymentPlan string

const (
	PlanCash            PaymentPlan = "cash"
	PlanCashInstallment PaymentPlan = "cash+installment"
	PlanInstallment     PaymentPlan = "installment"
)

// SaleStatus is the lifecycle state of the sale itself, independent of
// payment progress.
type SaleStatus string

const (
	SaleStatusActive    SaleStatus = "active"
	SaleStatusCancelled SaleStatus = "cancelled"
	SaleStatusCompleted SaleStatus = "completed"
)

// PaymentStatus is the aggregate payment state derived from obligations.
// not_started, completed and in_progress are legacy values still present on
// older records and accepted on input; the recalculator only ever produces
// pending, partial, overdue and paid.
type PaymentStatus string

const (
	PaymentStatusNotStarted PaymentStatus = "not_started"
	PaymentStatusPending    PaymentStatus = "pending"
	PaymentStatusPartial    PaymentStatus = "partial"
	PaymentStatusOverdue    PaymentStatus = "overdue"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusCompleted  PaymentStatus = "completed"
	PaymentStatusInProgress PaymentStatus = "in_progress"
)

// ObligationStatus is the state of a single scheduled payment.
type ObligationStatus string

const (
	ObligationPending ObligationStatus = "pending"
	ObligationPartial ObligationStatus = "partial"
	ObligationPaid    ObligationStatus = "paid"
	ObligationOverdue ObligationStatus = "overdue"
)

// Obligation is one installment or the single cash payment of a sale.
type Obligation struct {
	ID                int64            `json:"id"`
	SaleID            int64            `json:"saleId"`
	Amount            float64          `json:"amount"`
	DueDate           time.Time        `json:"dueDate"`
	Description       string           `json:"description"`
	InstallmentNumber int              `json:"installmentNumber"`
	Status            ObligationStatus `json:"status"`
	PaidAmount        float64          `json:"paidAmount"`
	PaidDate          *time.Time       `json:"paidDate"`
	PaymentMethod     *string          `json:"paymentMethod"`
	Notes             *string          `json:"notes"`
	// RemainingAmount is derived from Amount - PaidAmount and recomputed on
	// every load; the stored value is never authoritative. May go negative
	// when overpaid.
	RemainingAmount float64 `json:"remainingAmount"`
}

// Remaining recomputes the outstanding amount.
func (o *Obligation) Remaining() float64 {
	return o.Amount - o.PaidAmount
}

// Sale records the sale of one block to one customer with its payment
// schedule.
type Sale struct {
	ID               int64         `json:"id"`
	ProjectID        int64         `json:"projectId"`
	BlockID          int64         `json:"blockId"`
	CustomerID       int64         `json:"customerId"`
	PaymentPlan      PaymentPlan   `json:"paymentPlan"`
	TotalAmount      float64       `json:"totalAmount"`
	DownPayment      float64       `json:"downPayment"`
	InstallmentCount int           `json:"installmentCount"`
	FirstPaymentDate time.Time     `json:"firstPaymentDate"`
	Status           SaleStatus    `json:"status"`
	PaymentStatus    PaymentStatus `json:"paymentStatus"`
	Payments         []Obligation  `json:"payments"`
	Notes            *string       `json:"notes,omitempty"`
	CreatedBy        int64         `json:"createdBy"`
	CompletedAt      *time.Time    `json:"completedAt,omitempty"`
	CancelledAt      *time.Time    `json:"cancelledAt,omitempty"`
	CancelReason     *string       `json:"cancelReason,omitempty"`
	CreatedAt        time.Time     `json:"createdAt"`
	UpdatedAt        time.Time     `json:"updatedAt"`
}

// TotalPaid sums the paid amounts across all obligations.
func (s *Sale) TotalPaid() float64 {
	var paid float64
	for i := range s.Payments {
		paid += s.Payments[i].PaidAmount
	}
	return paid
}

// CustomObligation lets the caller supply a hand-edited schedule at sale
// creation; when present, automatic generation is skipped entirely.
type CustomObligation struct {
	Amount            float64   `json:"amount" validate:"required,gt=0"`
	DueDate           time.Time `json:"dueDate" validate:"required"`
	Description       string    `json:"description" validate:"max=200"`
	InstallmentNumber int       `json:"installmentNumber" validate:"required,gt=0"`
}

// CreateSaleRequest is the payload for creating a sale.
type CreateSaleRequest struct {
	ProjectID        int64              `json:"projectId" validate:"required,gt=0"`
	BlockID          int64              `json:"blockId" validate:"required,gt=0"`
	CustomerID       int64              `json:"customerId" validate:"required,gt=0"`
	PaymentPlan      PaymentPlan        `json:"paymentPlan" validate:"required,oneof=cash cash+installment installment"`
	TotalAmount      float64            `json:"totalAmount" validate:"required,gt=0"`
	DownPayment      float64            `json:"downPayment" validate:"gte=0"`
	InstallmentCount int                `json:"installmentCount" validate:"gte=0"`
	FirstPaymentDate time.Time          `json:"firstPaymentDate" validate:"required"`
	Notes            *string            `json:"notes,omitempty"`
	Payments         []CustomObligation `json:"payments,omitempty" validate:"omitempty,min=1,dive"`
}

// RecordPaymentRequest applies a payment against one obligation.
type RecordPaymentRequest struct {
	Amount        float64   `json:"amount" validate:"required,gt=0"`
	PaidDate      time.Time `json:"paidDate" validate:"required"`
	PaymentMethod string    `json:"paymentMethod" validate:"required,oneof=cash bank_transfer cheque card"`
	Notes         *string   `json:"notes,omitempty"`
}

// CancelSaleRequest carries the cancellation reason.
type CancelSaleRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// ListSalesRequest filters the sale listing.
type ListSalesRequest struct {
	ProjectID     int64
	BlockID       int64
	CustomerID    int64
	Status        SaleStatus
	PaymentStatus PaymentStatus
	Limit         int
	Offset        int
}

// PaymentSummary aggregates schedule progress for one sale.
type PaymentSummary struct {
	TotalAmount        float64 `json:"totalAmount"`
	TotalPaid          float64 `json:"totalPaid"`
	TotalRemaining     float64 `json:"totalRemaining"`
	TotalObligations   int     `json:"totalObligations"`
	PaidObligations    int     `json:"paidObligations"`
	OverdueObligations int     `json:"overdueObligations"`
	NextDueDate        *string `json:"nextDueDate,omitempty"`
	NextDueAmount      float64 `json:"nextDueAmount"`
}
