package dto

import (
	"errors"
	"testing"
	"time"

	"job-trail/internal/domain"
	"job-trail/internal/domain/interview"
	"job-trail/internal/domain/timeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestParseDate(t *testing.T) {
	d, err := ParseDate("event_date", "2026-05-17")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 17, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("event_date", "2026-05-17T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 17, 8, 30, 0, 0, time.UTC), d)

	_, err = ParseDate("event_date", "17/05/2026")
	assert.ErrorContains(t, err, "event_date")
}

func TestValidationErrors_UsesJSONNames(t *testing.T) {
	err := RegisterRequest{Username: "dana", Email: "not-an-email", Password: "short"}.Validate()
	require.Error(t, err)

	fields := map[string]string{}
	for _, fe := range ValidationErrors(err) {
		fields[fe.Field] = fe.Rule
	}
	assert.Equal(t, "required", fields["first_name"])
	assert.Equal(t, "email", fields["email"])
	assert.Equal(t, "min", fields["password"])
	assert.NotContains(t, fields, "username")

	assert.Nil(t, ValidationErrors(errors.New("plain")))
}

func TestCreateJobApplicationRequest_ToInput(t *testing.T) {
	req := CreateJobApplicationRequest{
		JobTitle:        "Engineer",
		CompanyName:     "Acme",
		ApplicationDate: "2026-01-02",
		Status:          strPtr("Interviewed"),
	}
	in, err := req.ToInput()
	require.NoError(t, err)
	require.NotNil(t, in.Status)
	assert.Equal(t, timeline.StatusInterviewed, *in.Status)

	req.ApplicationDate = "soon"
	_, err = req.ToInput()
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTimelineRequests(t *testing.T) {
	in, err := CreateTimelineRequest{EventType: "offer_declined", EventDate: "2026-04-01"}.ToInput()
	require.NoError(t, err)
	assert.Equal(t, timeline.KindOfferDeclined, in.Kind)

	_, err = CreateTimelineRequest{EventType: "HIRED", EventDate: "2026-04-01"}.ToInput()
	assert.ErrorIs(t, err, domain.ErrValidation)

	patch, err := UpdateTimelineRequest{Notes: strPtr("")}.ToPatch()
	require.NoError(t, err)
	assert.Nil(t, patch.Kind)
	assert.Nil(t, patch.EventDate)
	require.NotNil(t, patch.Notes)
	assert.False(t, patch.Empty())
}

func TestInterviewRequests(t *testing.T) {
	in, err := CreateInterviewRequest{InterviewType: "VIDEO", InterviewDate: "2026-04-01T15:00:00Z", InterviewerName: "  Sam "}.ToInput()
	require.NoError(t, err)
	assert.Equal(t, interview.TypeVideo, in.Type)
	assert.Equal(t, "Sam", in.InterviewerName)

	_, err = UpdateInterviewRequest{InterviewType: strPtr("carrier pigeon")}.ToPatch()
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestListJobApplicationsQuery(t *testing.T) {
	assert.Error(t, ListJobApplicationsQuery{PageSize: 101}.Validate())
	assert.Error(t, ListJobApplicationsQuery{Status: "ghosted"}.Validate())

	params, err := ListJobApplicationsQuery{Page: 3, Status: "offered"}.ToParams()
	require.NoError(t, err)
	assert.Equal(t, 3, params.Page)
	require.NotNil(t, params.Status)
	assert.Equal(t, timeline.StatusOffered, *params.Status)
}
