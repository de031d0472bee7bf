package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/xavierca1/lead-pipeline/internal/entity"
)

const researchTemplate = `<h2>Research ready: {{.CompanyName}}</h2>
{{if .ContactName}}<p>Contact: {{.ContactName}}</p>{{end}}
<p>Status: {{.Status}}</p>
<h3>Overview</h3>
<p>{{.Overview}}</p>
{{if .PainPoints}}<h3>Pain points</h3>
<ul>{{range .PainPoints}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .DecisionMakers}}<h3>Decision makers</h3>
<ul>{{range .DecisionMakers}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{if .RecentNews}}<h3>Recent news</h3>
<p>{{.RecentNews}}</p>{{end}}
{{if .OutreachAngle}}<h3>Suggested angle</h3>
<p>{{.OutreachAngle}}</p>{{end}}
`

var researchTmpl = template.Must(template.New("research").Parse(researchTemplate))

// dialer is satisfied by *gomail.Dialer.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// ResearchNotifier mails a research digest to the sales inbox.
type ResearchNotifier struct {
	cfg    SMTPConfig
	dialer dialer
	logger *zap.Logger
}

func NewResearchNotifier(cfg SMTPConfig, logger *zap.Logger) *ResearchNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResearchNotifier{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		logger: logger.Named("mail"),
	}
}

func (s *ResearchNotifier) NotifyResearchReady(ctx context.Context, lead *entity.Lead) error {
	if lead == nil || lead.Research == nil {
		return nil
	}

	data := ResearchEmailData{
		CompanyName:    lead.CompanyName,
		ContactName:    lead.ContactName,
		Status:         lead.Status.String(),
		Overview:       lead.Research.Overview,
		PainPoints:     lead.Research.PainPoints,
		DecisionMakers: lead.Research.DecisionMakers,
		RecentNews:     lead.Research.RecentNews,
		OutreachAngle:  lead.Research.OutreachAngle,
	}

	var body bytes.Buffer
	if err := researchTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("render research email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.To)
	m.SetHeader("Subject", fmt.Sprintf("Research ready: %s", lead.CompanyName))
	m.SetBody("text/html", body.String())

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send research email: %w", err)
	}

	s.logger.Info("research email sent", zap.String("lead_id", lead.ID), zap.String("to", s.cfg.To))
	return nil
}
