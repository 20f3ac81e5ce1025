package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avaldeso/machina"
)

func TestGetJobStatus(t *testing.T) {
	srv, svcs := newTestServer(testUser(machina.RoleUser))

	job := &machina.Job{
		QueueName: machina.QueueDefault,
		JobType:   machina.JobTypeReportEmail,
	}
	require.NoError(t, svcs.Queue.Enqueue(context.Background(), job))

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+job.ID.String(), nil)
	rec := doRequest(srv, req, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, job.ID, resp.ID)
	assert.Equal(t, machina.JobStatusPending, resp.Status)
	assert.False(t, resp.Done)
}

func TestGetJobStatusNotFound(t *testing.T) {
	srv, _ := newTestServer(testUser(machina.RoleUser))

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/"+uuid.NewString(), nil)
	rec := doRequest(srv, req, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelJob(t *testing.T) {
	srv, svcs := newTestServer(testUser(machina.RoleAdmin))

	job := &machina.Job{
		QueueName: machina.QueueDefault,
		JobType:   machina.JobTypeReportEmail,
	}
	require.NoError(t, svcs.Queue.Enqueue(context.Background(), job))

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/"+job.ID.String()+"/cancel", nil)
	rec := doRequest(srv, req, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp JobResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, machina.JobStatusCancelled, resp.Status)
	assert.True(t, resp.Done)
}

func TestCancelJobRequiresAdmin(t *testing.T) {
	srv, svcs := newTestServer(testUser(machina.RoleUser))

	job := &machina.Job{
		QueueName: machina.QueueDefault,
		JobType:   machina.JobTypeReportEmail,
	}
	require.NoError(t, svcs.Queue.Enqueue(context.Background(), job))

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/"+job.ID.String()+"/cancel", nil)
	rec := doRequest(srv, req, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	got, err := svcs.Queue.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, machina.JobStatusPending, got.Status)
}
