package service

import (
	"context"
	"fmt"

	"github.com/EdSoftcase/edson-sub001/pkg/models"
)

// TenantContext carries the owning-organization scope into outbound
// commands. All matching and execution is scoped to one tenant at a time.
type TenantContext struct {
	TenantID   string
	WorkflowID int64
}

// Outbound commands, one per collaborator capability. Each is a single
// opaque call with a success/failure result; the collaborators' own
// protocols are not specified here.

type TaskCommand struct {
	TenantID   string
	WorkflowID int64
	Title      string
}

type EmailCommand struct {
	TenantID  string
	Recipient string
	Subject   string
	Body      string
}

type NotifyCommand struct {
	TenantID string
	Target   string
	Message  string
}

type FieldUpdateCommand struct {
	TenantID string
	RecordID string
	Field    string
	Value    string
}

// TaskCreator creates a follow-up task/activity for a tenant.
type TaskCreator interface {
	CreateTask(ctx context.Context, cmd TaskCommand) error
}

// EmailSender delivers a message through the email collaborator.
type EmailSender interface {
	SendEmail(ctx context.Context, cmd EmailCommand) error
}

// ChannelNotifier posts a notification to a channel or user.
type ChannelNotifier interface {
	PostNotification(ctx context.Context, cmd NotifyCommand) error
}

// RecordUpdater mutates a named field on a tenant's business record.
type RecordUpdater interface {
	SetField(ctx context.Context, cmd FieldUpdateCommand) error
}

// Collaborators bundles the outbound capabilities the executors dispatch to.
type Collaborators struct {
	Tasks   TaskCreator
	Email   EmailSender
	Chat    ChannelNotifier
	Records RecordUpdater
}

// ActionError is a per-action failure with its taxonomy class preserved
// for diagnostics: a configuration failure (required key empty after
// resolution) versus a delivery failure (collaborator rejected or
// unreachable).
type ActionError struct {
	Type   models.FailureType
	Reason string
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s failure: %s", e.Type, e.Reason)
}

func configFailure(format string, args ...interface{}) *ActionError {
	return &ActionError{Type: models.FailureConfig, Reason: fmt.Sprintf(format, args...)}
}

func deliveryFailure(err error) *ActionError {
	return &ActionError{Type: models.FailureDelivery, Reason: err.Error()}
}

type executorFunc func(ctx context.Context, c Collaborators, cfg map[string]string, event models.Event, tenant TenantContext) *ActionError

// actionSpec pairs an action kind with its required config keys and its
// executor. Validation consults the required keys at authoring time;
// dispatch consults them again after resolution, so an empty resolved
// value is caught as a configuration failure.
type actionSpec struct {
	required []string
	run      executorFunc
}

var actionRegistry = map[models.ActionKind]actionSpec{
	models.ActionCreateTask: {
		required: []string{"template"},
		run:      runCreateTask,
	},
	models.ActionSendEmail: {
		required: []string{"template"},
		run:      runSendEmail,
	},
	models.ActionNotifyChannel: {
		required: []string{"target"},
		run:      runNotifyChannel,
	},
	models.ActionUpdateField: {
		required: []string{"field", "value"},
		run:      runUpdateField,
	},
}

// KnownActionKind reports whether k has a registered executor.
func KnownActionKind(k models.ActionKind) bool {
	_, ok := actionRegistry[k]
	return ok
}

// dispatchAction resolves nothing itself: cfg must already be resolved.
// It classifies missing required keys as configuration failures before
// handing the command to the executor.
func dispatchAction(ctx context.Context, c Collaborators, action models.WorkflowAction, cfg map[string]string, event models.Event, tenant TenantContext) *ActionError {
	spec, ok := actionRegistry[action.Kind]
	if !ok {
		// Unreachable after validation.
		return configFailure("unknown action kind %q", action.Kind)
	}
	for _, key := range spec.required {
		if cfg[key] == "" {
			return configFailure("required config %q is empty", key)
		}
	}
	return spec.run(ctx, c, cfg, event, tenant)
}

func runCreateTask(ctx context.Context, c Collaborators, cfg map[string]string, event models.Event, tenant TenantContext) *ActionError {
	cmd := TaskCommand{
		TenantID:   tenant.TenantID,
		WorkflowID: tenant.WorkflowID,
		Title:      cfg["template"],
	}
	if err := c.Tasks.CreateTask(ctx, cmd); err != nil {
		return deliveryFailure(err)
	}
	return nil
}

func runSendEmail(ctx context.Context, c Collaborators, cfg map[string]string, event models.Event, tenant TenantContext) *ActionError {
	recipient := cfg["to"]
	if recipient == "" {
		// Fall back to the event's own email field, the usual case for
		// lead-created rules.
		recipient = Resolve("{email}", event.Payload)
	}
	cmd := EmailCommand{
		TenantID:  tenant.TenantID,
		Recipient: recipient,
		Subject:   cfg["subject"],
		Body:      cfg["template"],
	}
	if err := c.Email.SendEmail(ctx, cmd); err != nil {
		return deliveryFailure(err)
	}
	return nil
}

func runNotifyChannel(ctx context.Context, c Collaborators, cfg map[string]string, event models.Event, tenant TenantContext) *ActionError {
	message := cfg["message"]
	if message == "" {
		message = fmt.Sprintf("automation fired for %s event", event.Kind)
	}
	cmd := NotifyCommand{
		TenantID: tenant.TenantID,
		Target:   cfg["target"],
		Message:  message,
	}
	if err := c.Chat.PostNotification(ctx, cmd); err != nil {
		return deliveryFailure(err)
	}
	return nil
}

func runUpdateField(ctx context.Context, c Collaborators, cfg map[string]string, event models.Event, tenant TenantContext) *ActionError {
	recordID := Resolve("{record_id}", event.Payload)
	if recordID == "" {
		return &ActionError{
			Type:   models.FailureDelivery,
			Reason: "event payload does not reference a record",
		}
	}
	cmd := FieldUpdateCommand{
		TenantID: tenant.TenantID,
		RecordID: recordID,
		Field:    cfg["field"],
		Value:    cfg["value"],
	}
	if err := c.Records.SetField(ctx, cmd); err != nil {
		return deliveryFailure(err)
	}
	return nil
}
