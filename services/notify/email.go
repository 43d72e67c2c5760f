// Package notifysvc dispatches domain events as emails to the administrators.
package notifysvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"

	"github.com/uniteach/monitoria/core"
)

type emailNotifier struct {
	email      core.EmailService
	adminEmail mail.Address
	logger     core.Logger
}

var _ core.Notifier = (*emailNotifier)(nil)

func NewEmailNotifier(email core.EmailService, conf *core.Config, logger core.Logger) core.Notifier {
	return &emailNotifier{
		email:      email,
		adminEmail: conf.AdminEmail,
		logger:     logger,
	}
}

func (n *emailNotifier) Notify(ctx context.Context, evt core.Event) {
	subject, intro := n.describe(evt.Type)

	body, err := json.MarshalIndent(evt.Payload, "", "  ")
	if err != nil {
		n.logger.Error("encoding event payload", err, "event", evt.ID)
		body = nil
	}

	n.email.SendMessages(&core.EmailMessage{
		To:          []mail.Address{n.adminEmail},
		Subject:     subject,
		TextContent: fmt.Sprintf("%s\n\nEvent %s at %s\n\n%s", intro, evt.ID, evt.OccurredAt.Format("2006-01-02 15:04:05 MST"), body),
	})
}

func (n *emailNotifier) describe(t core.EventType) (subject, intro string) {
	switch t {
	case core.EventAllocationCompleted:
		return "Scholarship allocation updated", "The scholarship allocation of an enrollment period changed."
	case core.EventApplicationAccepted:
		return "Monitoring position accepted", "A student accepted a monitoring position."
	case core.EventApplicationRejected:
		return "Monitoring position rejected", "A student rejected a monitoring position."
	}
	return string(t), "A domain event occurred."
}
