package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"job-trail/internal/domain/application"
	"job-trail/internal/domain/interview"
	"job-trail/internal/domain/timeline"
	"job-trail/internal/repository"

	"github.com/google/uuid"
)

// memState is the whole in-memory database. Transactions work on a clone and
// swap it in on commit.
type memState struct {
	apps       map[uuid.UUID]application.JobApplication
	events     map[uuid.UUID]timeline.Event
	interviews map[uuid.UUID]interview.Interview
	seq        int64
	clock      time.Time
}

func (s *memState) clone() *memState {
	out := &memState{
		apps:       make(map[uuid.UUID]application.JobApplication, len(s.apps)),
		events:     make(map[uuid.UUID]timeline.Event, len(s.events)),
		interviews: make(map[uuid.UUID]interview.Interview, len(s.interviews)),
		seq:        s.seq,
		clock:      s.clock,
	}
	for k, v := range s.apps {
		out.apps[k] = v
	}
	for k, v := range s.events {
		out.events[k] = v
	}
	for k, v := range s.interviews {
		out.interviews[k] = v
	}
	return out
}

// tick advances a fake clock so creation order is always observable.
func (s *memState) tick() time.Time {
	s.clock = s.clock.Add(time.Millisecond)
	return s.clock
}

type memUoW struct {
	mu      sync.Mutex
	state   *memState
	fail    map[string]error
	commits int
}

func newMemUoW() *memUoW {
	return &memUoW{
		state: &memState{
			apps:       map[uuid.UUID]application.JobApplication{},
			events:     map[uuid.UUID]timeline.Event{},
			interviews: map[uuid.UUID]interview.Interview{},
			clock:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		fail: map[string]error{},
	}
}

// failOn makes the named repository method return err.
func (u *memUoW) failOn(method string, err error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.fail[method] = err
}

func (u *memUoW) Stores() repository.Stores {
	return u.storesOn(u.state)
}

func (u *memUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, s repository.Stores) error) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	work := u.state.clone()
	if err := fn(ctx, u.storesOn(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	u.state = work
	u.commits++
	return nil
}

func (u *memUoW) storesOn(s *memState) repository.Stores {
	return repository.Stores{
		JobApplications: &memApps{s: s, fail: u.fail},
		Timelines:       &memTimelines{s: s, fail: u.fail},
		Interviews:      &memInterviews{s: s, fail: u.fail},
	}
}

// snapshot returns a copy of the committed state for assertions.
func (u *memUoW) snapshot() *memState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state.clone()
}

func (u *memUoW) seedApp(owner uuid.UUID) application.JobApplication {
	u.mu.Lock()
	defer u.mu.Unlock()
	now := u.state.tick()
	app := application.JobApplication{
		ID:              uuid.New(),
		UserID:          owner,
		JobTitle:        "Backend Engineer",
		CompanyName:     "Acme",
		ApplicationDate: now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	u.state.apps[app.ID] = app
	return app
}

func injected(fail map[string]error, method string) error {
	if err, ok := fail[method]; ok {
		return err
	}
	return nil
}

type memApps struct {
	s    *memState
	fail map[string]error
}

func (r *memApps) Create(_ context.Context, in application.NewJobApplication) (application.JobApplication, error) {
	if err := injected(r.fail, "Apps.Create"); err != nil {
		return application.JobApplication{}, err
	}
	now := r.s.tick()
	app := application.JobApplication{
		ID:              uuid.New(),
		UserID:          in.UserID,
		JobTitle:        in.JobTitle,
		CompanyName:     in.CompanyName,
		Location:        in.Location,
		ApplicationDate: in.ApplicationDate,
		SourceURL:       in.SourceURL,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	r.s.apps[app.ID] = app
	return app, nil
}

func (r *memApps) LockOwned(ctx context.Context, appID, userID uuid.UUID) (application.JobApplication, error) {
	return r.GetOwned(ctx, appID, userID)
}

func (r *memApps) GetOwned(_ context.Context, appID, userID uuid.UUID) (application.JobApplication, error) {
	app, ok := r.s.apps[appID]
	if !ok || app.DeletedAt != nil || app.UserID != userID {
		return application.JobApplication{}, repository.ErrJobApplicationForbidden
	}
	return app, nil
}

func (r *memApps) SetStatus(_ context.Context, appID uuid.UUID, status *timeline.Status) error {
	if err := injected(r.fail, "Apps.SetStatus"); err != nil {
		return err
	}
	app, ok := r.s.apps[appID]
	if !ok || app.DeletedAt != nil {
		return repository.ErrJobApplicationNotFound
	}
	if status != nil {
		s := *status
		status = &s
	}
	app.Status = status
	app.UpdatedAt = r.s.tick()
	r.s.apps[appID] = app
	return nil
}

func (r *memApps) List(_ context.Context, f application.ListFilter) ([]application.JobApplication, int, error) {
	if err := injected(r.fail, "Apps.List"); err != nil {
		return nil, 0, err
	}
	var all []application.JobApplication
	for _, app := range r.s.apps {
		if app.DeletedAt != nil {
			continue
		}
		if f.UserID != nil && app.UserID != *f.UserID {
			continue
		}
		if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" &&
			!strings.Contains(strings.ToLower(app.CompanyName), q) &&
			!strings.Contains(strings.ToLower(app.JobTitle), q) {
			continue
		}
		if f.Status != nil && (app.Status == nil || *app.Status != *f.Status) {
			continue
		}
		all = append(all, app)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	total := len(all)
	if f.Offset >= total {
		return []application.JobApplication{}, total, nil
	}
	end := f.Offset + f.Limit
	if end > total {
		end = total
	}
	return all[f.Offset:end], total, nil
}

func (r *memApps) Update(_ context.Context, appID uuid.UUID, p application.Patch) (application.JobApplication, error) {
	app, ok := r.s.apps[appID]
	if !ok || app.DeletedAt != nil {
		return application.JobApplication{}, repository.ErrJobApplicationNotFound
	}
	if p.JobTitle != nil {
		app.JobTitle = *p.JobTitle
	}
	if p.CompanyName != nil {
		app.CompanyName = *p.CompanyName
	}
	if p.Location != nil {
		app.Location = *p.Location
	}
	if p.ApplicationDate != nil {
		app.ApplicationDate = *p.ApplicationDate
	}
	app.UpdatedAt = r.s.tick()
	r.s.apps[appID] = app
	return app, nil
}

func (r *memApps) SoftDelete(_ context.Context, appID uuid.UUID) error {
	if err := injected(r.fail, "Apps.SoftDelete"); err != nil {
		return err
	}
	app, ok := r.s.apps[appID]
	if !ok || app.DeletedAt != nil {
		return repository.ErrJobApplicationNotFound
	}
	now := r.s.tick()
	app.DeletedAt = &now
	r.s.apps[appID] = app
	return nil
}

type memTimelines struct {
	s    *memState
	fail map[string]error
}

func (r *memTimelines) live(appID uuid.UUID) []timeline.Event {
	out := make([]timeline.Event, 0)
	for _, ev := range r.s.events {
		if ev.JobApplicationID == appID && ev.Live() {
			out = append(out, ev)
		}
	}
	return out
}

func (r *memTimelines) ListLive(_ context.Context, appID uuid.UUID) ([]timeline.Event, error) {
	if err := injected(r.fail, "Timelines.ListLive"); err != nil {
		return nil, err
	}
	out := r.live(appID)
	timeline.SortByEventDate(out)
	return out, nil
}

func (r *memTimelines) ListLiveByCreation(_ context.Context, appID uuid.UUID) ([]timeline.Event, error) {
	out := r.live(appID)
	timeline.SortByCreation(out)
	return out, nil
}

func (r *memTimelines) Get(_ context.Context, appID, eventID uuid.UUID) (timeline.Event, error) {
	ev, ok := r.s.events[eventID]
	if !ok || ev.JobApplicationID != appID || !ev.Live() {
		return timeline.Event{}, repository.ErrTimelineNotFound
	}
	return ev, nil
}

func (r *memTimelines) Append(_ context.Context, in timeline.NewEvent) (timeline.Event, error) {
	if err := injected(r.fail, "Timelines.Append"); err != nil {
		return timeline.Event{}, err
	}
	now := r.s.tick()
	r.s.seq++
	ev := timeline.Event{
		ID:               uuid.New(),
		JobApplicationID: in.JobApplicationID,
		Kind:             in.Kind,
		EventDate:        in.EventDate,
		Notes:            in.Notes,
		Seq:              r.s.seq,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.s.events[ev.ID] = ev
	return ev, nil
}

func (r *memTimelines) SoftDelete(ctx context.Context, appID, eventID uuid.UUID) (timeline.Event, error) {
	ev, err := r.Get(ctx, appID, eventID)
	if err != nil {
		return timeline.Event{}, err
	}
	now := r.s.tick()
	ev.DeletedAt = &now
	ev.UpdatedAt = now
	r.s.events[eventID] = ev
	return ev, nil
}

func (r *memTimelines) HardDelete(_ context.Context, appID uuid.UUID, eventIDs ...uuid.UUID) error {
	if err := injected(r.fail, "Timelines.HardDelete"); err != nil {
		return err
	}
	for _, id := range eventIDs {
		ev, ok := r.s.events[id]
		if !ok || ev.JobApplicationID != appID {
			return fmt.Errorf("%w: %s", repository.ErrTimelineNotFound, id)
		}
		delete(r.s.events, id)
	}
	return nil
}

func (r *memTimelines) UpdateFields(ctx context.Context, appID, eventID uuid.UUID, p timeline.Patch) (timeline.Event, error) {
	ev, err := r.Get(ctx, appID, eventID)
	if err != nil {
		return timeline.Event{}, err
	}
	if p.Empty() {
		return ev, nil
	}
	ev = p.Apply(ev)
	ev.UpdatedAt = r.s.tick()
	r.s.events[eventID] = ev
	return ev, nil
}

type memInterviews struct {
	s    *memState
	fail map[string]error
}

func (r *memInterviews) List(_ context.Context, appID uuid.UUID) ([]interview.Interview, error) {
	out := make([]interview.Interview, 0)
	for _, in := range r.s.interviews {
		if in.JobApplicationID == appID && in.DeletedAt == nil {
			out = append(out, in)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InterviewDate.After(out[j].InterviewDate) })
	return out, nil
}

func (r *memInterviews) Get(_ context.Context, appID, id uuid.UUID) (interview.Interview, error) {
	in, ok := r.s.interviews[id]
	if !ok || in.JobApplicationID != appID || in.DeletedAt != nil {
		return interview.Interview{}, repository.ErrInterviewNotFound
	}
	return in, nil
}

func (r *memInterviews) Create(_ context.Context, n interview.NewInterview) (interview.Interview, error) {
	now := r.s.tick()
	in := interview.Interview{
		ID:               uuid.New(),
		JobApplicationID: n.JobApplicationID,
		Type:             n.Type,
		InterviewDate:    n.InterviewDate,
		InterviewerName:  n.InterviewerName,
		Notes:            n.Notes,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.s.interviews[in.ID] = in
	return in, nil
}

func (r *memInterviews) Update(ctx context.Context, appID, id uuid.UUID, p interview.Patch) (interview.Interview, error) {
	in, err := r.Get(ctx, appID, id)
	if err != nil {
		return interview.Interview{}, err
	}
	if p.Type != nil {
		in.Type = *p.Type
	}
	if p.InterviewDate != nil {
		in.InterviewDate = *p.InterviewDate
	}
	if p.InterviewerName != nil {
		in.InterviewerName = *p.InterviewerName
	}
	if p.Notes != nil {
		in.Notes = *p.Notes
	}
	in.UpdatedAt = r.s.tick()
	r.s.interviews[id] = in
	return in, nil
}

func (r *memInterviews) SoftDelete(ctx context.Context, appID, id uuid.UUID) error {
	in, err := r.Get(ctx, appID, id)
	if err != nil {
		return err
	}
	now := r.s.tick()
	in.DeletedAt = &now
	r.s.interviews[id] = in
	return nil
}

func (r *memInterviews) SoftDeleteByApplication(_ context.Context, appID uuid.UUID) (int64, error) {
	if err := injected(r.fail, "Interviews.SoftDeleteByApplication"); err != nil {
		return 0, err
	}
	var n int64
	now := r.s.tick()
	for id, in := range r.s.interviews {
		if in.JobApplicationID == appID && in.DeletedAt == nil {
			in.DeletedAt = &now
			r.s.interviews[id] = in
			n++
		}
	}
	return n, nil
}

// recordingNotifier captures committed changes.
type recordingNotifier struct {
	mu      sync.Mutex
	changes []TimelineChange
}

func (n *recordingNotifier) TimelineChanged(_ context.Context, c TimelineChange) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, c)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.changes)
}
