// Package memory keeps appointments in process memory, optionally mirrored
// to a JSON file.
package memory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/goccy/go-json"

	"github.com/jwalitptl/medibook/internal/model"
	"github.com/jwalitptl/medibook/internal/repository"
)

type appointmentRepository struct {
	mu     sync.RWMutex
	items  []*model.Appointment
	nextID int64
	// path is empty when nothing is persisted.
	path string
}

func NewAppointmentRepository(seed ...*model.Appointment) repository.AppointmentRepository {
	r := &appointmentRepository{nextID: 1}
	for _, a := range seed {
		r.add(clone(a))
	}
	return r
}

// NewFileAppointmentRepository loads path if it exists and rewrites it after
// every change. A missing file starts an empty store.
func NewFileAppointmentRepository(path string) (repository.AppointmentRepository, error) {
	r := &appointmentRepository{nextID: 1, path: path}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		return r, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var items []*model.Appointment
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}
	}
	for _, a := range items {
		r.add(a)
	}
	return r, nil
}

// add appends a, assigning the next numeric id when a has none.
func (r *appointmentRepository) add(a *model.Appointment) {
	if a.ID == "" {
		a.ID = strconv.FormatInt(r.nextID, 10)
	}
	if n, err := strconv.ParseInt(a.ID, 10, 64); err == nil && n >= r.nextID {
		r.nextID = n + 1
	}
	r.items = append(r.items, a)
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := clone(appointment)
	stored.ID = ""
	r.add(stored)
	if err := r.persist(); err != nil {
		r.items = r.items[:len(r.items)-1]
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	appointment.ID = stored.ID
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id string) (*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, a := range r.items {
		if a.ID == id {
			return clone(a), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Appointment, 0, len(r.items))
	for _, a := range r.items {
		if filters.Match(a) {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

func (r *appointmentRepository) ListByDoctorAndDate(ctx context.Context, doctorName, date string) ([]*model.Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.Appointment
	for _, a := range r.items {
		if a.DoctorName == doctorName && a.Date == date {
			out = append(out, clone(a))
		}
	}
	return out, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id string, status model.AppointmentStatus) (*model.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.items {
		if a.ID != id {
			continue
		}
		previous := a.Status
		a.Status = status
		if err := r.persist(); err != nil {
			a.Status = previous
			return nil, fmt.Errorf("failed to update appointment: %w", err)
		}
		return clone(a), nil
	}
	return nil, repository.ErrNotFound
}

func (r *appointmentRepository) DoctorNames(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, a := range r.items {
		if a.DoctorName != "" {
			seen[a.DoctorName] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func (r *appointmentRepository) CancelBefore(ctx context.Context, date string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changed []*model.Appointment
	for _, a := range r.items {
		if a.Date != "" && a.Date < date && !a.Status.Terminal() {
			changed = append(changed, a)
		}
	}
	if len(changed) == 0 {
		return 0, nil
	}

	previous := make([]model.AppointmentStatus, len(changed))
	for i, a := range changed {
		previous[i] = a.Status
		a.Status = model.AppointmentStatusCancelled
	}
	if err := r.persist(); err != nil {
		for i, a := range changed {
			a.Status = previous[i]
		}
		return 0, fmt.Errorf("failed to cancel past appointments: %w", err)
	}
	return int64(len(changed)), nil
}

func (r *appointmentRepository) Ping(ctx context.Context) error {
	if r.path == "" {
		return nil
	}
	dir := filepath.Dir(r.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("storage directory unavailable: %w", err)
	}
	return nil
}

// persist writes the whole store to a temp file and renames it over path.
// Callers hold the write lock.
func (r *appointmentRepository) persist() error {
	if r.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(r.items, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode appointments: %w", err)
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}

func clone(a *model.Appointment) *model.Appointment {
	c := *a
	return &c
}
