package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"job-trail/internal/domain"
	"job-trail/internal/domain/application"
	"job-trail/internal/domain/interview"
	"job-trail/internal/domain/timeline"
	"job-trail/internal/domain/user"
	"job-trail/internal/repository"
	"job-trail/internal/scraper"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	posting scraper.Posting
	err     error
	calls   []string
}

func (f *fakeExtractor) Extract(_ context.Context, rawURL string) (scraper.Posting, error) {
	f.calls = append(f.calls, rawURL)
	return f.posting, f.err
}

type appFixture struct {
	uow       *memUoW
	notifier  *recordingNotifier
	extractor *fakeExtractor
	uc        *JobApplications
	owner     user.Principal
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	uow := newMemUoW()
	n := &recordingNotifier{}
	ex := &fakeExtractor{}
	uc := NewJobApplicationUsecase(uow, ex, n, nil, nil)
	uc.now = func() time.Time { return day(20) }
	return &appFixture{
		uow:       uow,
		notifier:  n,
		extractor: ex,
		uc:        uc,
		owner:     user.Principal{UserID: uuid.New(), Role: user.RoleUser},
	}
}

func (f *appFixture) create(t *testing.T, title, company string) application.JobApplication {
	t.Helper()
	app, err := f.uc.Create(context.Background(), f.owner, CreateJobApplicationInput{
		JobTitle:        title,
		CompanyName:     company,
		ApplicationDate: day(1),
	})
	require.NoError(t, err)
	return app
}

func statusPtr(s timeline.Status) *timeline.Status { return &s }

func TestJobApplications_CreateWritesFirstEvent(t *testing.T) {
	f := newAppFixture(t)

	app, err := f.uc.Create(context.Background(), f.owner, CreateJobApplicationInput{
		JobTitle:        "  Backend Engineer ",
		CompanyName:     "Acme",
		Location:        "Remote",
		ApplicationDate: day(3),
	})
	require.NoError(t, err)

	assert.Equal(t, "Backend Engineer", app.JobTitle)
	require.NotNil(t, app.Status)
	assert.Equal(t, timeline.StatusSaved, *app.Status)

	snap := f.uow.snapshot()
	require.Len(t, snap.events, 1)
	for _, ev := range snap.events {
		assert.Equal(t, app.ID, ev.JobApplicationID)
		assert.Equal(t, timeline.KindSaved, ev.Kind)
		assert.True(t, ev.EventDate.Equal(day(3)))
	}
	stored := snap.apps[app.ID]
	require.NotNil(t, stored.Status)
	assert.Equal(t, timeline.StatusSaved, *stored.Status)
	assert.Equal(t, 1, f.notifier.count())
}

func TestJobApplications_CreateInitialStatusMapsToEvent(t *testing.T) {
	cases := map[timeline.Status]timeline.EventKind{
		timeline.StatusSaved:       timeline.KindSaved,
		timeline.StatusApplied:     timeline.KindApplied,
		timeline.StatusInterviewed: timeline.KindInterviewCompleted,
		timeline.StatusOffered:     timeline.KindOfferReceived,
		timeline.StatusAccepted:    timeline.KindOfferAccepted,
		timeline.StatusRejected:    timeline.KindRejected,
		timeline.StatusWithdrawn:   timeline.KindWithdrawn,
	}
	for status, kind := range cases {
		t.Run(string(status), func(t *testing.T) {
			f := newAppFixture(t)
			app, err := f.uc.Create(context.Background(), f.owner, CreateJobApplicationInput{
				JobTitle:        "SRE",
				CompanyName:     "Initech",
				ApplicationDate: day(2),
				Status:          statusPtr(status),
			})
			require.NoError(t, err)
			require.NotNil(t, app.Status)
			assert.Equal(t, status, *app.Status)

			for _, ev := range f.uow.snapshot().events {
				assert.Equal(t, kind, ev.Kind)
			}
		})
	}
}

func TestJobApplications_CreateValidation(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	_, err := f.uc.Create(ctx, f.owner, CreateJobApplicationInput{CompanyName: "Acme", ApplicationDate: day(1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.Create(ctx, f.owner, CreateJobApplicationInput{JobTitle: "Dev", CompanyName: " ", ApplicationDate: day(1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.Create(ctx, f.owner, CreateJobApplicationInput{JobTitle: "Dev", CompanyName: "Acme"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.uc.Create(ctx, f.owner, CreateJobApplicationInput{
		JobTitle: "Dev", CompanyName: "Acme", ApplicationDate: day(1), Status: statusPtr("ghosted"),
	})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Empty(t, f.uow.snapshot().apps)
	assert.Zero(t, f.notifier.count())
}

func TestJobApplications_CreateIsAtomic(t *testing.T) {
	boom := errors.New("db down")
	for _, method := range []string{"Timelines.Append", "Timelines.ListLive", "Apps.SetStatus"} {
		t.Run(method, func(t *testing.T) {
			f := newAppFixture(t)
			f.uow.failOn(method, boom)

			_, err := f.uc.Create(context.Background(), f.owner, CreateJobApplicationInput{
				JobTitle: "Dev", CompanyName: "Acme", ApplicationDate: day(1),
			})
			require.ErrorIs(t, err, boom)

			snap := f.uow.snapshot()
			assert.Empty(t, snap.apps)
			assert.Empty(t, snap.events)
			assert.Zero(t, f.notifier.count())
		})
	}
}

func TestJobApplications_ImportUsesPosting(t *testing.T) {
	f := newAppFixture(t)
	f.extractor.posting = scraper.Posting{
		Title:    "Data Engineer",
		Company:  "Globex",
		Location: "Berlin",
		URL:      "https://globex.test/jobs/9",
	}

	app, err := f.uc.Import(context.Background(), f.owner, ImportJobApplicationInput{
		URL:    " https://globex.test/jobs/9?utm=x ",
		Status: statusPtr(timeline.StatusApplied),
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://globex.test/jobs/9?utm=x"}, f.extractor.calls)
	assert.Equal(t, "Data Engineer", app.JobTitle)
	assert.Equal(t, "Globex", app.CompanyName)
	assert.Equal(t, "Berlin", app.Location)
	require.NotNil(t, app.SourceURL)
	assert.Equal(t, "https://globex.test/jobs/9", *app.SourceURL)
	assert.True(t, app.ApplicationDate.Equal(day(20)))
	require.NotNil(t, app.Status)
	assert.Equal(t, timeline.StatusApplied, *app.Status)
}

func TestJobApplications_ImportKeepsRequestedDateAndURL(t *testing.T) {
	f := newAppFixture(t)
	f.extractor.posting = scraper.Posting{Title: "QA", Company: "Stark"}
	applied := day(4)

	app, err := f.uc.Import(context.Background(), f.owner, ImportJobApplicationInput{
		URL:             "https://stark.test/qa",
		ApplicationDate: &applied,
	})
	require.NoError(t, err)
	assert.True(t, app.ApplicationDate.Equal(applied))
	require.NotNil(t, app.SourceURL)
	assert.Equal(t, "https://stark.test/qa", *app.SourceURL)
}

func TestJobApplications_ImportFailureIsValidation(t *testing.T) {
	f := newAppFixture(t)
	f.extractor.err = fmt.Errorf("%w: 410 gone", scraper.ErrPostingUnavailable)

	_, err := f.uc.Import(context.Background(), f.owner, ImportJobApplicationInput{URL: "https://gone.test/"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Empty(t, f.uow.snapshot().apps)
}

func TestJobApplications_ImportWithoutExtractor(t *testing.T) {
	uc := NewJobApplicationUsecase(newMemUoW(), nil, nil, nil, nil)
	_, err := uc.Import(context.Background(), user.Principal{UserID: uuid.New()}, ImportJobApplicationInput{URL: "https://a.test"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestJobApplications_ListPagesOwnRows(t *testing.T) {
	f := newAppFixture(t)
	for i := 0; i < 12; i++ {
		f.create(t, fmt.Sprintf("Engineer %02d", i), "Acme")
	}
	other := user.Principal{UserID: uuid.New(), Role: user.RoleUser}
	_, err := f.uc.Create(context.Background(), other, CreateJobApplicationInput{
		JobTitle: "Engineer", CompanyName: "Acme", ApplicationDate: day(1),
	})
	require.NoError(t, err)

	first, err := f.uc.List(context.Background(), f.owner, ListJobApplicationsParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Page)
	assert.Equal(t, DefaultPageSize, first.PageSize)
	assert.Equal(t, 12, first.Total)
	require.Len(t, first.Items, DefaultPageSize)
	assert.Equal(t, "Engineer 11", first.Items[0].JobTitle)

	second, err := f.uc.List(context.Background(), f.owner, ListJobApplicationsParams{Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 12, second.Total)
	require.Len(t, second.Items, 2)
	assert.Equal(t, "Engineer 00", second.Items[1].JobTitle)

	beyond, err := f.uc.List(context.Background(), f.owner, ListJobApplicationsParams{Page: 5})
	require.NoError(t, err)
	assert.Empty(t, beyond.Items)
	assert.Equal(t, 12, beyond.Total)
}

func TestJobApplications_ListFilters(t *testing.T) {
	f := newAppFixture(t)
	f.create(t, "Backend Engineer", "Acme")
	f.create(t, "Designer", "Backend Studio")
	f.create(t, "Analyst", "Globex")
	_, err := f.uc.Create(context.Background(), f.owner, CreateJobApplicationInput{
		JobTitle: "Recruiter", CompanyName: "Initech", ApplicationDate: day(1), Status: statusPtr(timeline.StatusRejected),
	})
	require.NoError(t, err)

	page, err := f.uc.List(context.Background(), f.owner, ListJobApplicationsParams{Search: "BACKEND"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = f.uc.List(context.Background(), f.owner, ListJobApplicationsParams{Status: statusPtr(timeline.StatusRejected)})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "Recruiter", page.Items[0].JobTitle)
}

func TestJobApplications_ListRejectsBadPaging(t *testing.T) {
	f := newAppFixture(t)
	for _, params := range []ListJobApplicationsParams{
		{Page: -1},
		{PageSize: -5},
		{PageSize: MaxPageSize + 1},
	} {
		_, err := f.uc.List(context.Background(), f.owner, params)
		assert.ErrorIs(t, err, domain.ErrValidation, "%+v", params)
	}
}

func TestJobApplications_ListAllIsAdminOnly(t *testing.T) {
	f := newAppFixture(t)
	f.create(t, "Dev", "Acme")
	_, err := f.uc.Create(context.Background(), user.Principal{UserID: uuid.New()}, CreateJobApplicationInput{
		JobTitle: "Ops", CompanyName: "Globex", ApplicationDate: day(1),
	})
	require.NoError(t, err)

	_, err = f.uc.ListAll(context.Background(), f.owner, ListJobApplicationsParams{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := user.Principal{UserID: uuid.New(), Role: user.RoleAdmin}
	page, err := f.uc.ListAll(context.Background(), admin, ListJobApplicationsParams{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestJobApplications_GetAndUpdateAreOwnerOnly(t *testing.T) {
	f := newAppFixture(t)
	app := f.create(t, "Dev", "Acme")
	stranger := user.Principal{UserID: uuid.New(), Role: user.RoleUser}

	_, err := f.uc.Get(context.Background(), stranger, app.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	title := "Staff Dev"
	_, err = f.uc.Update(context.Background(), stranger, app.ID, application.Patch{JobTitle: &title})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	updated, err := f.uc.Update(context.Background(), f.owner, app.ID, application.Patch{JobTitle: &title})
	require.NoError(t, err)
	assert.Equal(t, "Staff Dev", updated.JobTitle)
	require.NotNil(t, updated.Status)
	assert.Equal(t, timeline.StatusSaved, *updated.Status)

	_, err = f.uc.Get(context.Background(), f.owner, uuid.New())
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestJobApplications_UpdateValidation(t *testing.T) {
	f := newAppFixture(t)
	app := f.create(t, "Dev", "Acme")
	blank := "   "

	_, err := f.uc.Update(context.Background(), f.owner, app.ID, application.Patch{JobTitle: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = f.uc.Update(context.Background(), f.owner, app.ID, application.Patch{CompanyName: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)

	same, err := f.uc.Update(context.Background(), f.owner, app.ID, application.Patch{})
	require.NoError(t, err)
	assert.Equal(t, app.JobTitle, same.JobTitle)
}

func TestJobApplications_DeleteCascadesInterviews(t *testing.T) {
	f := newAppFixture(t)
	app := f.create(t, "Dev", "Acme")
	interviews := NewInterviewUsecase(f.uow)
	for i := 0; i < 2; i++ {
		_, err := interviews.Create(context.Background(), f.owner, app.ID, CreateInterviewInput{
			Type: interview.TypeVideo, InterviewDate: day(5 + i),
		})
		require.NoError(t, err)
	}
	before := f.notifier.count()

	require.NoError(t, f.uc.Delete(context.Background(), f.owner, app.ID))

	snap := f.uow.snapshot()
	assert.NotNil(t, snap.apps[app.ID].DeletedAt)
	for _, iv := range snap.interviews {
		assert.NotNil(t, iv.DeletedAt)
	}
	assert.Equal(t, before+1, f.notifier.count())
	assert.Nil(t, f.notifier.changes[len(f.notifier.changes)-1].Status)

	_, err := f.uc.Get(context.Background(), f.owner, app.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, f.uc.Delete(context.Background(), f.owner, app.ID), domain.ErrForbidden)
}

func TestJobApplications_DeleteRollsBackOnCascadeFailure(t *testing.T) {
	f := newAppFixture(t)
	app := f.create(t, "Dev", "Acme")
	boom := errors.New("cascade failed")
	f.uow.failOn("Interviews.SoftDeleteByApplication", boom)

	err := f.uc.Delete(context.Background(), f.owner, app.ID)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, f.uow.snapshot().apps[app.ID].DeletedAt)
}

func TestJobApplications_DeleteByStranger(t *testing.T) {
	f := newAppFixture(t)
	app := f.create(t, "Dev", "Acme")

	err := f.uc.Delete(context.Background(), user.Principal{UserID: uuid.New()}, app.ID)
	require.ErrorIs(t, err, repository.ErrJobApplicationForbidden)
	assert.Nil(t, f.uow.snapshot().apps[app.ID].DeletedAt)
}
