package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"infiniteLeafWeb/internal/modules/admin/application/port"
	"infiniteLeafWeb/internal/modules/admin/domain"
	"infiniteLeafWeb/internal/platform/upstream"
	"infiniteLeafWeb/internal/shared/normalization"
)

var ErrRecordNotFound = errors.New("record not found in dashboard")

// View is everything the dashboard template needs for one render.
type View struct {
	Active   domain.Section
	Snapshot Snapshot
	Failures map[domain.Section]string
	Stale    bool
	Modal    *domain.Modal
	Delete   *domain.DeleteDialog
	Alert    string
	Notice   string

	// Unauthorized means the upstream rejected the token; the caller should
	// send the user back to the login page.
	Unauthorized bool
}

func (v *View) Rows() []Row { return v.Snapshot.Rows(v.Active) }

func (v *View) Empty() bool { return v.Snapshot.Count(v.Active) == 0 }

// Dashboard drives the admin screen: concurrent initial load, cached section
// switching, targeted refresh and the modal/delete flows.
type Dashboard struct {
	catalog  port.Catalog
	notifier port.Notifier
	cache    *dashboardCache
	loc      *time.Location
	now      func() time.Time
}

func NewDashboard(catalog port.Catalog, notifier port.Notifier, loc *time.Location) *Dashboard {
	if loc == nil {
		loc = time.Local
	}
	return &Dashboard{
		catalog:  catalog,
		notifier: notifier,
		cache:    newDashboardCache(),
		loc:      loc,
		now:      time.Now,
	}
}

// WithNotifier sets the change notifier after construction, for notifiers that
// themselves depend on the dashboard.
func (d *Dashboard) WithNotifier(n port.Notifier) *Dashboard {
	d.notifier = n
	return d
}

// Location is the zone datetime inputs are interpreted in.
func (d *Dashboard) Location() *time.Location { return d.loc }

// Load fetches all four collections concurrently and waits for every one. A
// failing fetch is logged and leaves its collection empty.
func (d *Dashboard) Load(ctx context.Context, sessionID, token string, active domain.Section) *View {
	entry := &dashboardEntry{
		sessionID: sessionID,
		active:    active,
		failures:  make(map[domain.Section]string),
		stale:     make(map[domain.Section]bool),
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	for _, section := range domain.Sections {
		g.Go(func() error {
			if err := d.fetch(ctx, token, section, &entry.snapshot); err != nil {
				slog.Warn("dashboard section load failed", slog.String("section", section.String()), slog.Any("error", err))
				mu.Lock()
				entry.failures[section] = upstream.Message(err)
				entry.rejected = entry.rejected || errors.Is(err, upstream.ErrUnauthorized)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	entry.fetchedAt = d.now()
	d.cache.set(entry)
	slog.Debug("dashboard loaded", slog.String("active", active.String()), slog.Int("failures", len(entry.failures)))
	return d.view(entry)
}

// Show switches the visible section using cached data. Only a section flagged
// stale by a change notification is re-fetched.
func (d *Dashboard) Show(ctx context.Context, sessionID, token string, section domain.Section) *View {
	entry, ok := d.cache.get(sessionID)
	if !ok {
		return d.Load(ctx, sessionID, token, section)
	}
	entry.active = section
	if entry.stale[section] {
		d.refreshSection(ctx, entry, token, section)
	}
	d.cache.set(entry)
	return d.view(entry)
}

// Refresh re-fetches only the active section.
func (d *Dashboard) Refresh(ctx context.Context, sessionID, token string) *View {
	entry, ok := d.cache.get(sessionID)
	if !ok {
		return d.Load(ctx, sessionID, token, domain.DefaultSection)
	}
	d.refreshSection(ctx, entry, token, entry.active)
	d.cache.set(entry)
	return d.view(entry)
}

// OpenModal renders the dashboard with the create/edit form open.
func (d *Dashboard) OpenModal(ctx context.Context, sessionID, token string, section domain.Section, mode domain.Mode, id int) (*View, error) {
	view := d.Show(ctx, sessionID, token, section)
	var record map[string]any
	if mode == domain.ModeEdit {
		found, ok := view.Snapshot.Record(section, id)
		if !ok {
			return view, fmt.Errorf("%w: %s %d", ErrRecordNotFound, section, id)
		}
		record = found
	}
	modal := domain.NewModal()
	if err := modal.Open(section, mode, id, record, view.Snapshot.SelectOptions(), d.loc); err != nil {
		return view, err
	}
	view.Modal = modal
	return view, nil
}

// Save validates and submits the modal form. On success the active section is
// refreshed and the modal closes; otherwise the returned view carries the
// still-open modal with its inline errors.
func (d *Dashboard) Save(ctx context.Context, sessionID, token string, section domain.Section, mode domain.Mode, id int, form map[string]string) (*View, error) {
	modal := domain.NewModal()
	if err := modal.Open(section, mode, id, nil, nil, d.loc); err != nil {
		return nil, err
	}
	modal.Bind(form)

	if err := modal.BeginSubmit(); err != nil {
		return d.withModal(ctx, sessionID, token, section, modal), err
	}

	payload, err := modal.Payload(d.loc)
	if err == nil {
		var resourceID int
		resourceID, err = d.write(ctx, token, section, mode, id, payload)
		if err == nil {
			_ = modal.Complete()
			action := port.ActionCreated
			if mode == domain.ModeEdit {
				action = port.ActionUpdated
				resourceID = id
			}
			d.notify(ctx, sessionID, section, action, resourceID)
			return d.afterMutation(ctx, sessionID, token, section), nil
		}
	}

	slog.Warn("dashboard save failed", slog.String("section", section.String()), slog.String("mode", string(mode)), slog.Any("error", err))
	_ = modal.Fail(upstream.Message(err))
	return d.withModal(ctx, sessionID, token, section, modal), err
}

// ConfirmDelete renders the dashboard with the delete confirmation open.
func (d *Dashboard) ConfirmDelete(ctx context.Context, sessionID, token string, section domain.Section, id int) (*View, error) {
	view := d.Show(ctx, sessionID, token, section)
	record, ok := view.Snapshot.Record(section, id)
	if !ok {
		return view, fmt.Errorf("%w: %s %d", ErrRecordNotFound, section, id)
	}
	dialog := domain.NewDeleteDialog()
	if err := dialog.Open(section, id, record); err != nil {
		return view, err
	}
	view.Delete = dialog
	return view, nil
}

// Delete removes a record. Failures surface as an alert on the dashboard.
func (d *Dashboard) Delete(ctx context.Context, sessionID, token string, section domain.Section, id int) (*View, error) {
	var record map[string]any
	if entry, ok := d.cache.get(sessionID); ok {
		record, _ = entry.snapshot.Record(section, id)
	}
	dialog := domain.NewDeleteDialog()
	if err := dialog.Open(section, id, record); err != nil {
		return nil, err
	}
	_ = dialog.Begin()

	if err := d.remove(ctx, token, section, id); err != nil {
		slog.Warn("dashboard delete failed", slog.String("section", section.String()), slog.Int("id", id), slog.Any("error", err))
		_ = dialog.Fail(upstream.Message(err))
		view := d.Show(ctx, sessionID, token, section)
		view.Alert = dialog.Alert
		return view, err
	}
	_ = dialog.Complete()
	d.notify(ctx, sessionID, section, port.ActionDeleted, id)
	return d.afterMutation(ctx, sessionID, token, section), nil
}

// Invalidate marks section stale in every other session's dashboard.
func (d *Dashboard) Invalidate(section domain.Section, originSessionID string) int {
	return d.cache.markStale(section, originSessionID)
}

// Forget drops a session's dashboard, used on logout.
func (d *Dashboard) Forget(sessionID string) {
	d.cache.delete(sessionID)
}

// Prune drops dashboards untouched since cutoff.
func (d *Dashboard) Prune(cutoff time.Time) int {
	return d.cache.prune(cutoff)
}

func (d *Dashboard) afterMutation(ctx context.Context, sessionID, token string, section domain.Section) *View {
	entry, ok := d.cache.get(sessionID)
	if !ok {
		return d.Load(ctx, sessionID, token, section)
	}
	entry.active = section
	d.refreshSection(ctx, entry, token, section)
	d.cache.set(entry)
	return d.view(entry)
}

func (d *Dashboard) withModal(ctx context.Context, sessionID, token string, section domain.Section, modal *domain.Modal) *View {
	view := d.Show(ctx, sessionID, token, section)
	options := view.Snapshot.SelectOptions()
	for i := range modal.Fields {
		if opts, ok := options[modal.Fields[i].Name]; ok {
			modal.Fields[i].Options = opts
		}
	}
	view.Modal = modal
	return view
}

// refreshSection re-fetches one section. On failure the previous data is kept.
func (d *Dashboard) refreshSection(ctx context.Context, entry *dashboardEntry, token string, section domain.Section) {
	next := entry.snapshot.clone()
	if err := d.fetch(ctx, token, section, &next); err != nil {
		slog.Warn("dashboard section refresh failed", slog.String("section", section.String()), slog.Any("error", err))
		entry.failures[section] = upstream.Message(err)
		entry.rejected = entry.rejected || errors.Is(err, upstream.ErrUnauthorized)
		return
	}
	entry.snapshot = next
	delete(entry.failures, section)
	delete(entry.stale, section)
	entry.fetchedAt = d.now()
}

func (d *Dashboard) view(entry *dashboardEntry) *View {
	return &View{
		Active:   entry.active,
		Snapshot: entry.snapshot,
		Failures: entry.failures,
		Stale:    entry.stale[entry.active],

		Unauthorized: entry.rejected,
	}
}

func (d *Dashboard) notify(ctx context.Context, sessionID string, section domain.Section, action string, id int) {
	if d.notifier == nil {
		return
	}
	d.notifier.Notify(ctx, port.Change{Section: section.String(), Action: action, ResourceID: id, Origin: sessionID})
}

// fetch loads one section's collection into snap.
func (d *Dashboard) fetch(ctx context.Context, token string, section domain.Section, snap *Snapshot) error {
	switch section {
	case domain.SectionTables:
		items, err := d.catalog.Tables.GetAll(ctx, token)
		if err != nil {
			return err
		}
		snap.Tables = items
	case domain.SectionCustomers:
		items, err := d.catalog.Customers.GetAll(ctx, token)
		if err != nil {
			return err
		}
		snap.Customers = items
	case domain.SectionReservations:
		items, err := d.catalog.Reservations.GetAll(ctx, token)
		if err != nil {
			return err
		}
		snap.Reservations = items
	case domain.SectionMenu:
		items, err := d.catalog.Menu.GetAll(ctx, token)
		if err != nil {
			return err
		}
		snap.Menu = items
	default:
		return fmt.Errorf("%w: %d", domain.ErrUnknownSection, section)
	}
	return nil
}

func (d *Dashboard) write(ctx context.Context, token string, section domain.Section, mode domain.Mode, id int, payload map[string]any) (int, error) {
	switch section {
	case domain.SectionTables:
		return mutate(ctx, d.catalog.Tables, token, mode, id, payload)
	case domain.SectionCustomers:
		return mutate(ctx, d.catalog.Customers, token, mode, id, payload)
	case domain.SectionReservations:
		return mutate(ctx, d.catalog.Reservations, token, mode, id, payload)
	case domain.SectionMenu:
		return mutate(ctx, d.catalog.Menu, token, mode, id, payload)
	}
	return 0, fmt.Errorf("%w: %d", domain.ErrUnknownSection, section)
}

func (d *Dashboard) remove(ctx context.Context, token string, section domain.Section, id int) error {
	switch section {
	case domain.SectionTables:
		return d.catalog.Tables.Delete(ctx, token, id)
	case domain.SectionCustomers:
		return d.catalog.Customers.Delete(ctx, token, id)
	case domain.SectionReservations:
		return d.catalog.Reservations.Delete(ctx, token, id)
	case domain.SectionMenu:
		return d.catalog.Menu.Delete(ctx, token, id)
	}
	return fmt.Errorf("%w: %d", domain.ErrUnknownSection, section)
}

type record interface {
	Fields() map[string]any
}

// mutate creates or updates through store and returns the affected id.
func mutate[T record](ctx context.Context, store port.EntityStore[T], token string, mode domain.Mode, id int, payload map[string]any) (int, error) {
	if mode == domain.ModeEdit {
		if _, err := store.Update(ctx, token, id, payload); err != nil {
			return 0, err
		}
		return id, nil
	}
	created, err := store.Create(ctx, token, payload)
	if err != nil {
		return 0, err
	}
	if created == nil {
		return 0, nil
	}
	return normalization.AsInt((*created).Fields()["id"]), nil
}
