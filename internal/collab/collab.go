// Package collab provides the in-tree implementations of the outbound
// collaborator capabilities. Task creation and record mutation write
// through the store; email and chat delivery are logged outbound commands,
// the real integrations live outside this engine.
package collab

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/EdSoftcase/edson-sub001/pkg/models"
	"github.com/EdSoftcase/edson-sub001/pkg/service"
	"github.com/EdSoftcase/edson-sub001/pkg/storage"
)

// StoreTaskCreator persists created tasks in the application store.
type StoreTaskCreator struct {
	Store storage.Store
}

func (c *StoreTaskCreator) CreateTask(ctx context.Context, cmd service.TaskCommand) error {
	return c.Store.SaveTask(models.Task{
		ID:         uuid.NewString(),
		TenantID:   cmd.TenantID,
		Title:      cmd.Title,
		WorkflowID: cmd.WorkflowID,
		CreatedAt:  time.Now(),
	})
}

// StoreRecordUpdater mutates record fields in the application store.
type StoreRecordUpdater struct {
	Store storage.Store
}

func (c *StoreRecordUpdater) SetField(ctx context.Context, cmd service.FieldUpdateCommand) error {
	return c.Store.UpdateRecordField(cmd.TenantID, cmd.RecordID, cmd.Field, cmd.Value)
}

// LogEmailSender emits the outbound email command to the log stream.
type LogEmailSender struct {
	Logger *logrus.Logger
}

func (c *LogEmailSender) SendEmail(ctx context.Context, cmd service.EmailCommand) error {
	c.Logger.WithFields(logrus.Fields{
		"tenant":    cmd.TenantID,
		"recipient": cmd.Recipient,
		"subject":   cmd.Subject,
	}).Infof("email dispatched: %s", cmd.Body)
	return nil
}

// LogChannelNotifier emits the outbound chat notification to the log stream.
type LogChannelNotifier struct {
	Logger *logrus.Logger
}

func (c *LogChannelNotifier) PostNotification(ctx context.Context, cmd service.NotifyCommand) error {
	c.Logger.WithFields(logrus.Fields{
		"tenant": cmd.TenantID,
		"target": cmd.Target,
	}).Infof("notification posted: %s", cmd.Message)
	return nil
}

// Default wires the standard collaborator set against a store and logger.
func Default(store storage.Store, logger *logrus.Logger) service.Collaborators {
	return service.Collaborators{
		Tasks:   &StoreTaskCreator{Store: store},
		Email:   &LogEmailSender{Logger: logger},
		Chat:    &LogChannelNotifier{Logger: logger},
		Records: &StoreRecordUpdater{Store: store},
	}
}
