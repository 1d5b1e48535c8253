package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vidyaprep/backend/internal/emaillogs"
	"github.com/vidyaprep/backend/internal/models"
	"github.com/vidyaprep/backend/pkg/mailer"
	"github.com/vidyaprep/backend/pkg/queue"
)

// ConfirmationProcessor drains the confirmation queue and sends purchase
// emails, writing an audit row per attempt.
type ConfirmationProcessor struct {
	queue  *queue.Queue
	mailer *mailer.Mailer
	logs   *emaillogs.Repository
	logger *zap.Logger
}

func NewConfirmationProcessor(q *queue.Queue, m *mailer.Mailer, logs *emaillogs.Repository, logger *zap.Logger) *ConfirmationProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfirmationProcessor{queue: q, mailer: m, logs: logs, logger: logger}
}

// Run processes jobs until ctx is cancelled.
func (p *ConfirmationProcessor) Run(ctx context.Context) error {
	p.logger.Info("confirmation worker started")
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("confirmation worker stopping")
			return ctx.Err()
		default:
		}

		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.logger.Error("dequeue", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Warn("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if rerr := p.queue.Retry(ctx, job); rerr != nil {
				p.logger.Error("retry failed", zap.String("job_id", job.ID), zap.Error(rerr))
			}
		}
	}
}

// Process handles a single job.
func (p *ConfirmationProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeConfirmation {
		p.logger.Warn("unknown job type dropped", zap.String("type", string(job.Type)))
		return nil
	}
	var payload queue.ConfirmationPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		p.logger.Warn("bad payload dropped", zap.String("job_id", job.ID), zap.Error(err))
		return nil
	}
	return p.sendConfirmation(ctx, payload)
}

func (p *ConfirmationProcessor) sendConfirmation(ctx context.Context, payload queue.ConfirmationPayload) error {
	subject := fmt.Sprintf("You're enrolled: %s", payload.ItemTitle)
	log := models.EmailLog{
		UserID:         payload.UserID,
		OrderID:        payload.OrderID,
		EmailType:      string(queue.JobTypeConfirmation),
		RecipientEmail: payload.RecipientEmail,
		Subject:        subject,
	}

	if !p.mailer.Configured() {
		log.Status = models.EmailSkipped
		p.writeLog(ctx, &log)
		return nil
	}

	body := confirmationBody(payload)
	if err := p.mailer.Send(ctx, payload.RecipientEmail, subject, body); err != nil {
		log.Status = models.EmailFailed
		log.ErrorMessage = err.Error()
		p.writeLog(ctx, &log)
		return err
	}

	now := time.Now()
	log.Status = models.EmailSent
	log.SentAt = &now
	p.writeLog(ctx, &log)
	return nil
}

func (p *ConfirmationProcessor) writeLog(ctx context.Context, log *models.EmailLog) {
	if err := p.logs.Create(ctx, log); err != nil {
		p.logger.Error("email log write", zap.Error(err), zap.String("order_id", log.OrderID.String()))
	}
}

func confirmationBody(p queue.ConfirmationPayload) string {
	note := ""
	if p.PaymentStatus == string(models.PaymentInstallment) {
		note = "\nThis was the first installment. The remaining part is due before the course completes."
	}
	return fmt.Sprintf(`Hi %s,

Your payment of ₹%.2f is confirmed and you are enrolled in %q.%s

Open your dashboard to start learning.

Team VidyaPrep`, p.RecipientName, p.Amount, p.ItemTitle, note)
}
