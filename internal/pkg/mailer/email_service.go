package mailer

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/google/uuid"
)

type IEmailService interface {
	NotifyProposalsReady(ctx context.Context, jobId uuid.UUID, count int) error
}

type emailService struct {
	dialer        *gomail.Dialer
	senderEmail   string
	reviewerEmail string
	baseURL       string
}

func NewEmailService(host string, port int, username, password, senderEmail, reviewerEmail, baseURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:        d,
		senderEmail:   senderEmail,
		reviewerEmail: reviewerEmail,
		baseURL:       baseURL,
	}
}

// NotifyProposalsReady tells the configured reviewer a batch is waiting.
// Returns without sending when no reviewer address is configured.
func (s *emailService) NotifyProposalsReady(ctx context.Context, jobId uuid.UUID, count int) error {
	if s.reviewerEmail == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", s.reviewerEmail)
	m.SetHeader("Subject", fmt.Sprintf("%d proposals awaiting review", count))

	reviewLink := fmt.Sprintf("%s/api/proposal/v1/job/%s?status=pending", s.baseURL, jobId)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Proposals ready for review</h2>
			<p>Job <code>%s</code> produced <strong>%d</strong> file organization proposals.</p>
			<p>Review them here:</p>
			<p><a href="%s">%s</a></p>
			<p>The job will stay paused at the review step until the batch is approved or rejected.</p>
		</div>
	`, jobId, count, reviewLink, reviewLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to notify reviewer for job %s: %v\n", jobId, err)
		return err
	}

	fmt.Printf("[MAILER] Reviewer notified for job %s (%d proposals)\n", jobId, count)
	return nil
}
