package sales

import (
	"fmt"
	"time"

	"github.com/terrace-erp/terrace/internal/shared"
)

// GenerateSchedule builds the ordered obligation list for a newly created
// sale. When the caller already attached a custom schedule the generation is
// skipped entirely (first write wins, no merge).
func GenerateSchedule(s *Sale) error {
	if len(s.Payments) > 0 {
		return nil
	}
	if err := validatePlan(s); err != nil {
		return err
	}

	switch s.PaymentPlan {
	case PlanCash:
		s.Payments = []Obligation{newObligation(s.TotalAmount, s.FirstPaymentDate, "Cash Payment", 1)}

	case PlanCashInstallment:
		payments := make([]Obligation, 0, s.InstallmentCount+1)
		payments = append(payments, newObligation(s.DownPayment, s.FirstPaymentDate, "Down Payment", 1))
		// Simple division: a fractional remainder stays unredistributed, the
		// sum invariant holds within one unit of rounding.
		share := (s.TotalAmount - s.DownPayment) / float64(s.InstallmentCount)
		due := s.FirstPaymentDate
		for i := 1; i <= s.InstallmentCount; i++ {
			due = addMonthClipped(due)
			payments = append(payments, newObligation(share, due, fmt.Sprintf("Installment %d", i), i+1))
		}
		s.Payments = payments

	case PlanInstallment:
		payments := make([]Obligation, 0, s.InstallmentCount)
		share := s.TotalAmount / float64(s.InstallmentCount)
		due := s.FirstPaymentDate
		for i := 1; i <= s.InstallmentCount; i++ {
			payments = append(payments, newObligation(share, due, fmt.Sprintf("Installment %d", i), i))
			due = addMonthClipped(due)
		}
		s.Payments = payments
	}
	return nil
}

func validatePlan(s *Sale) error {
	if s.TotalAmount <= 0 {
		return fmt.Errorf("%w: total amount must be positive", shared.ErrInvalidInput)
	}
	if s.FirstPaymentDate.IsZero() {
		return fmt.Errorf("%w: first payment date required", shared.ErrInvalidInput)
	}
	switch s.PaymentPlan {
	case PlanCash:
	case PlanCashInstallment:
		if s.DownPayment <= 0 {
			return fmt.Errorf("%w: down payment required for cash+installment plan", shared.ErrInvalidInput)
		}
		if s.DownPayment >= s.TotalAmount {
			return fmt.Errorf("%w: down payment must be below total amount", shared.ErrInvalidInput)
		}
		if s.InstallmentCount < 1 {
			return fmt.Errorf("%w: installment count required", shared.ErrInvalidInput)
		}
	case PlanInstallment:
		if s.InstallmentCount < 1 {
			return fmt.Errorf("%w: installment count required", shared.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown payment plan %q", shared.ErrInvalidInput, s.PaymentPlan)
	}
	return nil
}

func newObligation(amount float64, due time.Time, description string, number int) Obligation {
	return Obligation{
		Amount:            amount,
		DueDate:           due,
		Description:       description,
		InstallmentNumber: number,
		Status:            ObligationPending,
		PaidAmount:        0,
		RemainingAmount:   amount,
	}
}

// addMonthClipped advances the date by one calendar month, rolling over year
// boundaries and clipping to the last valid day of shorter months
// (Jan 31 -> Feb 28, not Mar 3 as time.AddDate would yield).
func addMonthClipped(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()
	lastDay := time.Date(year, month+2, 0, 0, 0, 0, 0, t.Location()).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(year, month+1, day, hour, min, sec, t.Nanosecond(), t.Location())
}

// Recalc keeps the aggregate payment status consistent with obligation-level
// state and the given clock. It runs before every persistence of a sale.
//
// The escalation pending -> overdue is one-way: an obligation is never
// demoted automatically, only an explicit payment changes it.
func Recalc(s *Sale, now time.Time) {
	anyOverdue := false
	for i := range s.Payments {
		p := &s.Payments[i]
		if p.Status == ObligationPending && p.DueDate.Before(now) {
			p.Status = ObligationOverdue
		}
		if p.Status == ObligationOverdue {
			anyOverdue = true
		}
		p.RemainingAmount = p.Remaining()
	}

	totalPaid := s.TotalPaid()
	switch {
	case totalPaid >= s.TotalAmount:
		s.PaymentStatus = PaymentStatusPaid
	case totalPaid > 0:
		if anyOverdue {
			s.PaymentStatus = PaymentStatusOverdue
		} else {
			s.PaymentStatus = PaymentStatusPartial
		}
	default:
		if anyOverdue {
			s.PaymentStatus = PaymentStatusOverdue
		} else {
			s.PaymentStatus = PaymentStatusPending
		}
	}
}

// ApplyPayment records a cumulative payment against one obligation and
// re-derives the obligation, sale payment status and sale lifecycle state.
// Overpayment is not rejected; the remaining amount simply goes negative.
func ApplyPayment(s *Sale, obligationID int64, amount float64, paidDate time.Time, method string, notes *string, now time.Time) error {
	var target *Obligation
	for i := range s.Payments {
		if s.Payments[i].ID == obligationID {
			target = &s.Payments[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("%w: obligation %d", ErrObligationNotFound, obligationID)
	}

	target.PaidAmount += amount
	target.PaidDate = &paidDate
	if method != "" {
		target.PaymentMethod = &method
	}
	if notes != nil {
		target.Notes = notes
	}
	switch {
	case target.PaidAmount >= target.Amount:
		target.Status = ObligationPaid
	case target.PaidAmount > 0:
		target.Status = ObligationPartial
	}
	target.RemainingAmount = target.Remaining()

	Recalc(s, now)

	if allPaid(s) && s.Status == SaleStatusActive {
		s.Status = SaleStatusCompleted
		completed := now
		s.CompletedAt = &completed
	}
	return nil
}

func allPaid(s *Sale) bool {
	if len(s.Payments) == 0 {
		return false
	}
	for i := range s.Payments {
		if s.Payments[i].Status != ObligationPaid {
			return false
		}
	}
	return true
}

// Summarize aggregates payment progress for presentation.
func Summarize(s *Sale) PaymentSummary {
	summary := PaymentSummary{
		TotalAmount:      s.TotalAmount,
		TotalObligations: len(s.Payments),
	}
	var nextDue *Obligation
	for i := range s.Payments {
		p := &s.Payments[i]
		summary.TotalPaid += p.PaidAmount
		switch p.Status {
		case ObligationPaid:
			summary.PaidObligations++
		case ObligationOverdue:
			summary.OverdueObligations++
		}
		if p.Status != ObligationPaid {
			if nextDue == nil || p.DueDate.Before(nextDue.DueDate) {
				nextDue = p
			}
		}
	}
	summary.TotalRemaining = summary.TotalAmount - summary.TotalPaid
	if nextDue != nil {
		due := nextDue.DueDate.Format("2006-01-02")
		summary.NextDueDate = &due
		summary.NextDueAmount = nextDue.Remaining()
	}
	return summary
}
