package notification

import (
	"context"
	"fmt"
	"log/slog"

	auditmodel "github.com/frahmantamala/lead-rotation/internal/core/datamodel/audit"
	"github.com/frahmantamala/lead-rotation/internal/core/events"
)

// Dispatcher listens for state-change events and turns the ones the
// settings record opts into notification mail. It runs entirely off the
// request path: a failed delivery is logged, never surfaced.
type Dispatcher struct {
	settings *Service
	sender   Sender
	logger   *slog.Logger
}

func NewDispatcher(settings *Service, sender Sender, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		settings: settings,
		sender:   sender,
		logger:   logger,
	}
}

// Register subscribes the dispatcher on the event bus.
func (d *Dispatcher) Register(bus *events.EventBus) {
	bus.Subscribe(events.StateChangedType, d.HandleStateChanged)
}

// HandleStateChanged consults the current settings and sends mail when
// the action's notification category is enabled.
func (d *Dispatcher) HandleStateChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload().(map[string]interface{})
	if !ok {
		return fmt.Errorf("unexpected payload type %T", event.Payload())
	}

	action, _ := payload["action"].(string)
	details, _ := payload["details"].(string)
	user, _ := payload["user"].(string)

	settings, err := d.settings.load(ctx)
	if err != nil {
		return err
	}

	if !shouldNotify(action, settings.NotifyOnLogin, settings.NotifyOnEmployeeRemoval, settings.NotifyOnSystemChanges) {
		return nil
	}

	subject := fmt.Sprintf("Lead Rotation: %s", action)
	body := fmt.Sprintf("Action: %s\nUser: %s\nDetails: %s\nTime: %s",
		action, user, details, event.OccurredAt().Format("2006-01-02 15:04:05"))

	if !settings.EmailEnabled {
		d.logger.Info("notification suppressed, email disabled",
			"action", action,
			"user", user)
		return nil
	}

	if err := d.sender.Send(ctx, settings, subject, body); err != nil {
		return fmt.Errorf("send notification for %s: %w", action, err)
	}

	d.logger.Info("notification sent", "action", action, "to", settings.AdminEmail)
	return nil
}

// SendTest delivers a test mail with the current (unmasked) settings so
// administrators can verify SMTP configuration.
func (d *Dispatcher) SendTest(ctx context.Context) error {
	settings, err := d.settings.load(ctx)
	if err != nil {
		return err
	}
	return d.sender.Send(ctx, settings,
		"Lead Rotation: test notification",
		"This is a test notification. SMTP delivery is working.")
}

// shouldNotify maps an audit action onto the settings categories.
func shouldNotify(action string, onLogin, onRemoval, onSystemChanges bool) bool {
	switch auditmodel.Action(action) {
	case auditmodel.ActionLogin, auditmodel.ActionLoginFailed:
		return onLogin
	case auditmodel.ActionRemove:
		return onRemoval
	case auditmodel.ActionAdd, auditmodel.ActionReorder, auditmodel.ActionToggle, auditmodel.ActionLeadAssignment:
		return onSystemChanges
	default:
		return false
	}
}
