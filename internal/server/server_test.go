package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timetablegen/internal/model"
	"timetablegen/internal/opb"
	"timetablegen/internal/store"
)

const smallPayload = `{
	"faculty": [{"id": "f1", "subjects_can_teach": ["s1"]}],
	"rooms": [{"id": "r1", "capacity": 30}],
	"subjects": [{"id": "s1", "duration": 1}],
	"batches": [{"id": "b1", "student_count": 10, "subject_list": ["s1"]}],
	"timeslots": ["mon_1", "mon_2"]
}`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	scheduler := model.NewScheduler(opb.NewBacktrackBackend(), model.Options{})
	srv := New(scheduler, store.New(), zap.NewNop(), 1, 4)
	t.Cleanup(srv.Close)
	return srv
}

func performRequest(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestGenerate(t *testing.T) {
	router := newTestServer(t).Router()

	t.Run("success", func(t *testing.T) {
		resp := performRequest(router, http.MethodPost, "/api/generate?name=fall", smallPayload)

		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"schedule_id"`)
		require.Contains(t, resp.Body.String(), `"status":"ok"`)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := performRequest(router, http.MethodPost, "/api/generate", `{"faculty": `)
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("invalid payload", func(t *testing.T) {
		invalid := `{
			"faculty": [{"id": "f1"}, {"id": "f1"}],
			"rooms": [{"id": "r1", "capacity": 30}],
			"subjects": [{"id": "s1"}],
			"batches": [{"id": "b1", "student_count": 10}],
			"timeslots": ["mon_1"]
		}`
		resp := performRequest(router, http.MethodPost, "/api/generate", invalid)
		require.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	})
}

func TestSchedules(t *testing.T) {
	router := newTestServer(t).Router()

	resp := performRequest(router, http.MethodPost, "/api/generate?name=fall", smallPayload)
	require.Equal(t, http.StatusOK, resp.Code)

	var generated struct {
		ScheduleID string `json:"schedule_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &generated))

	t.Run("list", func(t *testing.T) {
		resp := performRequest(router, http.MethodGet, "/api/schedules", "")
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), generated.ScheduleID)
	})

	t.Run("bad limit", func(t *testing.T) {
		resp := performRequest(router, http.MethodGet, "/api/schedules?limit=many", "")
		require.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("get", func(t *testing.T) {
		resp := performRequest(router, http.MethodGet, "/api/schedules/"+generated.ScheduleID, "")
		require.Equal(t, http.StatusOK, resp.Code)
		require.Contains(t, resp.Body.String(), `"name":"fall"`)
	})

	t.Run("get unknown", func(t *testing.T) {
		resp := performRequest(router, http.MethodGet, "/api/schedules/nope", "")
		require.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestGenerateAsync(t *testing.T) {
	router := newTestServer(t).Router()

	resp := performRequest(router, http.MethodPost, "/api/generate_async", smallPayload)
	require.Equal(t, http.StatusAccepted, resp.Code)

	var accepted struct {
		TaskID string `json:"task_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.TaskID)

	var task Task
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp := performRequest(router, http.MethodGet, "/api/task/"+accepted.TaskID, "")
		require.Equal(t, http.StatusOK, resp.Code)
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &task))

		if task.State == TaskSuccess || task.State == TaskFailure {
			break
		}
		require.True(t, time.Now().Before(deadline), "task did not finish in time")
		time.Sleep(10 * time.Millisecond)
	}

	require.Equal(t, TaskSuccess, task.State)
	require.NotEmpty(t, task.ScheduleID)
	require.NotNil(t, task.Result)
	require.Equal(t, model.StatusOK, task.Result.Status)

	t.Run("unknown task", func(t *testing.T) {
		resp := performRequest(router, http.MethodGet, "/api/task/nope", "")
		require.Equal(t, http.StatusNotFound, resp.Code)
	})
}
