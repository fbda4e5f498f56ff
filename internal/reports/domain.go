package reports

import "time"

// ProjectSummary aggregates sales figures for one project.
type ProjectSummary struct {
	ProjectID    int64   `json:"projectId"`
	ProjectName  string  `json:"projectName"`
	TotalUnits   int     `json:"totalUnits"`
	SoldUnits    int     `json:"soldUnits"`
	ContractedV  float64 `json:"contractValue"`
	Collected    float64 `json:"collected"`
	Outstanding  float64 `json:"outstanding"`
	OverdueCount int     `json:"overdueCount"`
}

// CollectionRow is one received payment inside the reporting window.
type CollectionRow struct {
	SaleID        int64     `json:"saleId"`
	ProjectName   string    `json:"projectName"`
	BlockNumber   string    `json:"blockNumber"`
	CustomerName  string    `json:"customerName"`
	Description   string    `json:"description"`
	PaidAmount    float64   `json:"paidAmount"`
	PaidDate      time.Time `json:"paidDate"`
	PaymentMethod string    `json:"paymentMethod"`
}

// CollectionReport totals payments received in a date range.
type CollectionReport struct {
	From  time.Time       `json:"from"`
	To    time.Time       `json:"to"`
	Total float64         `json:"total"`
	Rows  []CollectionRow `json:"rows"`
}

// OverdueRow is one obligation past its due date.
type OverdueRow struct {
	SaleID       int64     `json:"saleId"`
	ProjectName  string    `json:"projectName"`
	BlockNumber  string    `json:"blockNumber"`
	CustomerName string    `json:"customerName"`
	Description  string    `json:"description"`
	Amount       float64   `json:"amount"`
	Remaining    float64   `json:"remaining"`
	DueDate      time.Time `json:"dueDate"`
	DaysOverdue  int       `json:"daysOverdue"`
	Bucket       string    `json:"bucket"`
}

// OverdueReport groups overdue obligations into aging buckets.
type OverdueReport struct {
	AsOf    time.Time          `json:"asOf"`
	Total   float64            `json:"total"`
	Buckets map[string]float64 `json:"buckets"`
	Rows    []OverdueRow       `json:"rows"`
}

// Dashboard bundles the three reports for the overview screen.
type Dashboard struct {
	Projects   []ProjectSummary `json:"projects"`
	Collection CollectionReport `json:"collection"`
	Overdue    OverdueReport    `json:"overdue"`
}

// Aging bucket labels, ordered.
const (
	Bucket1to30  = "1-30"
	Bucket31to60 = "31-60"
	Bucket61to90 = "61-90"
	BucketOver90 = "90+"
)

// BucketFor maps days overdue to its aging bucket.
func BucketFor(days int) string {
	switch {
	case days <= 30:
		return Bucket1to30
	case days <= 60:
		return Bucket31to60
	case days <= 90:
		return Bucket61to90
	default:
		return BucketOver90
	}
}
