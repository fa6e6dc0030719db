package service_test

import (
	"context"
	"sync"

	"github.com/EdSoftcase/edson-sub001/pkg/service"
)

type logger struct{}

func (l logger) Infof(format string, args ...interface{}) {
	// no-op
}

func (l logger) Errorf(format string, args ...interface{}) {
	// no-op
}

// fakeCollabs records every outbound command and fails on demand. Guarded
// by a mutex because pipelines for one event run concurrently.
type fakeCollabs struct {
	mu      sync.Mutex
	tasks   []service.TaskCommand
	emails  []service.EmailCommand
	notes   []service.NotifyCommand
	updates []service.FieldUpdateCommand

	taskErr   error
	emailErr  error
	notifyErr error
	updateErr error
}

func (f *fakeCollabs) CreateTask(ctx context.Context, cmd service.TaskCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.taskErr != nil {
		return f.taskErr
	}
	f.tasks = append(f.tasks, cmd)
	return nil
}

func (f *fakeCollabs) SendEmail(ctx context.Context, cmd service.EmailCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailErr != nil {
		return f.emailErr
	}
	f.emails = append(f.emails, cmd)
	return nil
}

func (f *fakeCollabs) PostNotification(ctx context.Context, cmd service.NotifyCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.notifyErr != nil {
		return f.notifyErr
	}
	f.notes = append(f.notes, cmd)
	return nil
}

func (f *fakeCollabs) SetField(ctx context.Context, cmd service.FieldUpdateCommand) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, cmd)
	return nil
}

func (f *fakeCollabs) asCollaborators() service.Collaborators {
	return service.Collaborators{Tasks: f, Email: f, Chat: f, Records: f}
}
