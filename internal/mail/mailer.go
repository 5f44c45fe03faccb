// Package mail sends the export report and per-reading notification emails
// over SMTP.
package mail

import (
	"fmt"
	"io"
	"time"

	"github.com/fuelsight/tank-telemetry/internal/config"
	"gopkg.in/gomail.v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Sender is the mail surface handlers depend on; it exists so tests can
// substitute a recording fake for the SMTP transport.
type Sender interface {
	SendReadingsReport(to, filename string, workbook []byte) error
	SendReadingNotification(to string, n ReadingNotification) error
}

// Mailer sends email through a configured SMTP relay.
type Mailer struct {
	cfg config.SMTPConfig
}

// New creates a Mailer from SMTP configuration.
func New(cfg config.SMTPConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) send(msg *gomail.Message) error {
	d := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.User, m.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// SendReadingsReport emails the exported readings workbook as an attachment.
func (m *Mailer) SendReadingsReport(to, filename string, workbook []byte) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "LPG Tank Readings - "+time.Now().Format("02/01/2006"))
	msg.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px;">
			<h2 style="color: #3b82f6;">LPG Tank Readings Report</h2>
			<p>Please find attached the tank readings report.</p>
			<p><strong>Date:</strong> %s</p>
			<p>This is an automated email from the LPG Tank Management System.</p>
		</div>
	`, time.Now().Format(time.RFC1123)))
	msg.Attach(filename,
		gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(workbook)
			return err
		}),
		gomail.SetHeader(map[string][]string{"Content-Type": {xlsxContentType}}),
	)

	return m.send(msg)
}

// ReadingNotification carries the fields rendered into the per-reading
// notification email.
type ReadingNotification struct {
	CustomerName string
	DropPoint    string
	Address      string
	TankNumber   string
	Capacity     float64
	Reading      float64
	Percentage   float64
	Volume       float64
	Notes        string
	SubmittedBy  string
	SubmittedAt  time.Time
}

// SendReadingNotification emails a summary of a single submitted reading.
func (m *Mailer) SendReadingNotification(to string, n ReadingNotification) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("Tank Reading - %s / %s", n.DropPoint, n.TankNumber))
	msg.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px;">
			<h2 style="color: #3b82f6;">New Tank Reading</h2>
			<table style="border-collapse: collapse;">
				<tr><td><strong>Customer</strong></td><td>%s</td></tr>
				<tr><td><strong>Drop Point</strong></td><td>%s</td></tr>
				<tr><td><strong>Address</strong></td><td>%s</td></tr>
				<tr><td><strong>Tank</strong></td><td>%s (%.0f L)</td></tr>
				<tr><td><strong>Reading</strong></td><td>%.2f</td></tr>
				<tr><td><strong>Percentage</strong></td><td>%.1f%%</td></tr>
				<tr><td><strong>Est. Volume</strong></td><td>%.2f L</td></tr>
				<tr><td><strong>Notes</strong></td><td>%s</td></tr>
				<tr><td><strong>Submitted By</strong></td><td>%s</td></tr>
				<tr><td><strong>Submitted At</strong></td><td>%s</td></tr>
			</table>
		</div>
	`, n.CustomerName, n.DropPoint, n.Address, n.TankNumber, n.Capacity,
		n.Reading, n.Percentage, n.Volume, n.Notes, n.SubmittedBy,
		n.SubmittedAt.Format(time.RFC1123)))

	return m.send(msg)
}
