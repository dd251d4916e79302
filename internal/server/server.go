package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"timetablegen/internal/catalog"
	"timetablegen/internal/model"
	"timetablegen/internal/store"
	"timetablegen/pkg/jobs"
)

// TaskState tracks an asynchronous generation request through its lifetime.
type TaskState string

const (
	TaskPending TaskState = "pending"
	TaskStarted TaskState = "started"
	TaskSuccess TaskState = "success"
	TaskFailure TaskState = "failure"
)

// Task is the externally visible status of an async generation.
type Task struct {
	ID         string                `json:"id"`
	State      TaskState             `json:"state"`
	ScheduleID string                `json:"schedule_id,omitempty"`
	Error      string                `json:"error,omitempty"`
	Result     *model.ScheduleResult `json:"result,omitempty"`
}

type generateJob struct {
	taskID  string
	name    string
	payload catalog.Payload
}

// Server wires the scheduler, the schedule store and the background queue
// behind the HTTP API.
type Server struct {
	scheduler model.Scheduler
	store     *store.Store
	queue     *jobs.Queue
	log       *zap.Logger

	mu    sync.RWMutex
	tasks map[string]Task
}

func New(scheduler model.Scheduler, st *store.Store, log *zap.Logger, workers, bufferSize int) *Server {
	server := &Server{
		scheduler: scheduler,
		store:     st,
		log:       log,
		tasks:     make(map[string]Task),
	}
	server.queue = jobs.NewQueue("generate", server.runGeneration, jobs.QueueConfig{
		Workers:    workers,
		BufferSize: bufferSize,
		Logger:     log,
	})
	return server
}

// Close drains the background queue. Pending tasks finish before it returns.
func (s *Server) Close() {
	s.queue.Stop()
}

func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	api.POST("/generate", s.generate)
	api.POST("/generate_async", s.generateAsync)
	api.GET("/task/:id", s.task)
	api.GET("/schedules", s.listSchedules)
	api.GET("/schedules/:id", s.getSchedule)
	return router
}

func (s *Server) generate(c *gin.Context) {
	payload, name, ok := s.bindPayload(c)
	if !ok {
		return
	}

	result, err := s.scheduler.Generate(payload)
	if err != nil {
		s.renderError(c, err)
		return
	}

	record := s.store.Save(name, payload, result)
	c.JSON(http.StatusOK, gin.H{"schedule_id": record.ID, "result": result})
}

func (s *Server) generateAsync(c *gin.Context) {
	payload, name, ok := s.bindPayload(c)
	if !ok {
		return
	}

	taskID := uuid.NewString()
	s.setTask(Task{ID: taskID, State: TaskPending})

	err := s.queue.Enqueue(jobs.Job{
		ID:      taskID,
		Payload: generateJob{taskID: taskID, name: name, payload: payload},
	})
	if err != nil {
		s.setTask(Task{ID: taskID, State: TaskFailure, Error: err.Error()})
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"task_id": taskID})
}

func (s *Server) task(c *gin.Context) {
	task, ok := s.getTask(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown task"})
		return
	}
	c.JSON(http.StatusOK, task)
}

func (s *Server) listSchedules(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}
	c.JSON(http.StatusOK, gin.H{"schedules": s.store.List(limit)})
}

func (s *Server) getSchedule(c *gin.Context) {
	record, ok := s.store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown schedule"})
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) bindPayload(c *gin.Context) (catalog.Payload, string, bool) {
	var document map[string]any
	if err := c.ShouldBindJSON(&document); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return catalog.Payload{}, "", false
	}

	name := c.Query("name")

	payload, err := catalog.DecodePayload(document)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return catalog.Payload{}, "", false
	}
	return payload, name, true
}

func (s *Server) runGeneration(ctx context.Context, job jobs.Job) error {
	gen, ok := job.Payload.(generateJob)
	if !ok {
		return errors.New("unexpected job payload")
	}

	s.setTask(Task{ID: gen.taskID, State: TaskStarted})

	result, err := s.scheduler.Generate(gen.payload)
	if err != nil {
		s.setTask(Task{ID: gen.taskID, State: TaskFailure, Error: err.Error()})
		return err
	}

	record := s.store.Save(gen.name, gen.payload, result)
	s.setTask(Task{ID: gen.taskID, State: TaskSuccess, ScheduleID: record.ID, Result: &result})
	return nil
}

func (s *Server) renderError(c *gin.Context, err error) {
	var inputErr *catalog.InputError
	if errors.As(err, &inputErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": inputErr.Error()})
		return
	}

	var modelErr *model.ModelConstructionError
	if errors.As(err, &modelErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": modelErr.Error()})
		return
	}

	s.log.Error("schedule generation failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "schedule generation failed"})
}

func (s *Server) setTask(task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
}

func (s *Server) getTask(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	return task, ok
}
