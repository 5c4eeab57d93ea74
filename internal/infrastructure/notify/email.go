// Package notify entrega las notificaciones del flujo de devoluciones (correo, log) y las
// desacopla del request con AsyncNotifier.
package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/jhoicas/rma-api/internal/application/rma"
	"github.com/jhoicas/rma-api/internal/domain"
	"github.com/jhoicas/rma-api/internal/domain/entity"
	"github.com/jhoicas/rma-api/internal/domain/repository"
)

// Sender envía un mensaje ya armado. SMTPSender es la implementación real.
type Sender interface {
	Send(ctx context.Context, msg *mail.Msg) error
}

// SMTPConfig datos del servidor de correo.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
}

// SMTPSender envía por SMTP con go-mail; abre una conexión por mensaje.
type SMTPSender struct {
	client *mail.Client
}

// NewSMTPSender crea el cliente. Sin usuario no se negocia autenticación.
func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &SMTPSender{client: client}, nil
}

func (s *SMTPSender) Send(ctx context.Context, msg *mail.Msg) error {
	return s.client.DialAndSendWithContext(ctx, msg)
}

// EmailNotifier avisa por correo al cliente (o al proveedor en RMAs de proveedor).
// Solo envía si el setting rma/email_notifications está activo.
type EmailNotifier struct {
	rmaRepo   repository.RMARepository
	customers repository.CustomerRepository
	vendors   repository.VendorRepository
	settings  repository.SettingsRepository
	sender    Sender
	from      string
	log       zerolog.Logger
}

var _ rma.Notifier = (*EmailNotifier)(nil)

// NewEmailNotifier construye el notificador de correo.
func NewEmailNotifier(
	rmaRepo repository.RMARepository,
	customers repository.CustomerRepository,
	vendors repository.VendorRepository,
	settings repository.SettingsRepository,
	sender Sender,
	from string,
	log zerolog.Logger,
) *EmailNotifier {
	return &EmailNotifier{
		rmaRepo:   rmaRepo,
		customers: customers,
		vendors:   vendors,
		settings:  settings,
		sender:    sender,
		from:      from,
		log:       log,
	}
}

func (n *EmailNotifier) Notify(ctx context.Context, rmaID string, event rma.Event) error {
	policy, err := rma.LoadPolicy(ctx, n.settings)
	if err != nil {
		return err
	}
	if !policy.EmailNotifications {
		return nil
	}

	req, err := n.rmaRepo.GetByID(ctx, rmaID)
	if err != nil {
		return err
	}
	if req == nil {
		return fmt.Errorf("%w: rma %s", domain.ErrNotFound, rmaID)
	}

	to, name, err := n.recipient(ctx, req)
	if err != nil {
		return err
	}
	if to == "" {
		n.log.Debug().Str("rma_id", rmaID).Str("event", string(event)).Msg("sin destinatario de correo, se omite")
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("remitente inválido: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("destinatario inválido: %w", err)
	}
	msg.Subject(subjectFor(event, req.ReferenceCode))
	msg.SetBodyString(mail.TypeTextHTML, renderBody(event, req, name))

	if err := n.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("enviar correo %s: %w", event, err)
	}
	n.log.Info().Str("rma_id", rmaID).Str("event", string(event)).Str("to", to).Msg("correo enviado")
	return nil
}

func (n *EmailNotifier) recipient(ctx context.Context, req *entity.RMARequest) (email, name string, err error) {
	if req.Kind == entity.RMAKindVendorReturn {
		v, err := n.vendors.GetByID(ctx, req.VendorID)
		if err != nil || v == nil {
			return "", "", err
		}
		return v.ContactEmail, v.Name, nil
	}
	c, err := n.customers.GetByID(ctx, req.CustomerID)
	if err != nil || c == nil {
		return "", "", err
	}
	return c.Email, c.Name, nil
}

func subjectFor(event rma.Event, ref string) string {
	switch event {
	case rma.EventCreated:
		return "Recibimos su solicitud de devolución " + ref
	case rma.EventApproved:
		return "Devolución " + ref + " aprobada"
	case rma.EventRejected:
		return "Devolución " + ref + " rechazada"
	case rma.EventRefunded:
		return "Reembolso de la devolución " + ref
	case rma.EventVendorRMACreated:
		return "Nueva solicitud de devolución a proveedor " + ref
	default:
		return "Actualización de la devolución " + ref
	}
}

func renderBody(event rma.Event, req *entity.RMARequest, name string) string {
	var b strings.Builder
	greeting := "Hola"
	if name != "" {
		greeting += " " + html.EscapeString(name)
	}
	fmt.Fprintf(&b, `<div style="font-family: Arial, sans-serif; max-width: 600px;">
<p>%s,</p>
`, greeting)

	switch event {
	case rma.EventCreated:
		fmt.Fprintf(&b, "<p>Registramos su solicitud <strong>%s</strong>. Le avisaremos cuando sea revisada.</p>\n", req.ReferenceCode)
	case rma.EventApproved:
		fmt.Fprintf(&b, "<p>Su devolución <strong>%s</strong> fue aprobada. Incluya la referencia dentro del paquete al enviarlo.</p>\n", req.ReferenceCode)
	case rma.EventRejected:
		fmt.Fprintf(&b, "<p>Su devolución <strong>%s</strong> no fue aprobada.</p>\n", req.ReferenceCode)
		if req.InternalNotes != "" {
			fmt.Fprintf(&b, "<p>Motivo: %s</p>\n", html.EscapeString(req.InternalNotes))
		}
	case rma.EventRefunded:
		fmt.Fprintf(&b, "<p>Procesamos el reembolso de la devolución <strong>%s</strong> por <strong>%s</strong>.</p>\n",
			req.ReferenceCode, req.RefundAmount.StringFixed(2))
		if req.RestockingFee.IsPositive() {
			fmt.Fprintf(&b, "<p>Cargo de reposición aplicado: %s</p>\n", req.RestockingFee.StringFixed(2))
		}
	case rma.EventVendorRMACreated:
		fmt.Fprintf(&b, "<p>Generamos la solicitud <strong>%s</strong> por un total de %s para ítems defectuosos.</p>\n",
			req.ReferenceCode, req.TotalAmount.StringFixed(2))
	default:
		fmt.Fprintf(&b, "<p>La devolución <strong>%s</strong> está en estado %s.</p>\n", req.ReferenceCode, req.Status)
	}
	b.WriteString("</div>")
	return b.String()
}
