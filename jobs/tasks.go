package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
	// TaskTypeOverdueScan is the task type for the nightly overdue sweep.
	TaskTypeOverdueScan = "sales:overdue_scan"
)

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// NewOverdueScanTask constructs the nightly overdue sweep task.
func NewOverdueScanTask() *asynq.Task {
	return asynq.NewTask(TaskTypeOverdueScan, nil)
}

// Mailer delivers queued emails over SMTP.
type Mailer struct {
	addr string
	from string
}

// NewMailer constructs a Mailer. Empty addr disables delivery.
func NewMailer(addr, from string) *Mailer {
	return &Mailer{addr: addr, from: from}
}

// HandleSendEmail processes TaskTypeSendEmail tasks.
func (m *Mailer) HandleSendEmail(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if m.addr == "" {
		return nil
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		m.from, payload.To, payload.Subject, payload.Body)
	return smtp.SendMail(m.addr, nil, m.from, []string{payload.To}, []byte(msg))
}
