package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/lexdesk-api/internal/application/service"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/request"
	"github.com/sangkips/lexdesk-api/internal/presentation/http/dto/response"
)

// AgendaHandler handles tasks, events, the calendar feed and notifications
type AgendaHandler struct {
	agendaService *service.AgendaService
}

// NewAgendaHandler creates a new agenda handler
func NewAgendaHandler(agendaService *service.AgendaService) *AgendaHandler {
	return &AgendaHandler{agendaService: agendaService}
}

func taskInput(req *request.TaskRequest) *service.TaskInput {
	return &service.TaskInput{
		ClientID:    req.ClientID,
		AssignedTo:  req.AssignedTo,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
}

func eventInput(req *request.EventRequest) *service.EventInput {
	return &service.EventInput{
		ClientID: req.ClientID,
		Title:    req.Title,
		Start:    req.Start,
		End:      req.End,
		AllDay:   req.AllDay,
		Location: req.Location,
	}
}

// ListTasks lists tasks
// @Summary List Tasks
// @Tags agenda
// @Security BearerAuth
// @Produce json
// @Param client_id query string false "Client ID"
// @Param completed query bool false "Completion filter"
// @Param mine query bool false "Only tasks assigned to me"
// @Success 200 {object} response.APIResponse
// @Router /tasks [get]
func (h *AgendaHandler) ListTasks(c *gin.Context) {
	clientID, ok := queryUUID(c, "client_id")
	if !ok {
		return
	}
	input := &service.ListTasksInput{
		Pagination: pageParams(c),
		ClientID:   clientID,
		Completed:  queryBool(c, "completed"),
	}
	if mine := queryBool(c, "mine"); mine != nil {
		input.Mine = *mine
	}

	result, err := h.agendaService.ListTasks(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Tasks retrieved successfully", result)
}

// CreateTask adds a task
// @Summary Create Task
// @Tags agenda
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.TaskRequest true "Task"
// @Success 201 {object} response.APIResponse
// @Router /tasks [post]
func (h *AgendaHandler) CreateTask(c *gin.Context) {
	var req request.TaskRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.agendaService.CreateTask(c.Request.Context(), taskInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Task created successfully", task)
}

// UpdateTask changes a task
// @Summary Update Task
// @Tags agenda
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body request.TaskRequest true "Changes"
// @Success 200 {object} response.APIResponse
// @Router /tasks/{id} [put]
func (h *AgendaHandler) UpdateTask(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.TaskRequest
	if !bindJSON(c, &req) {
		return
	}
	task, err := h.agendaService.UpdateTask(c.Request.Context(), id, taskInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Task updated successfully", task)
}

// CompleteTask marks a task done, or reopens it with completed=false
// @Summary Complete Task
// @Tags agenda
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body request.CompleteTaskRequest false "Completion"
// @Success 200 {object} response.APIResponse
// @Router /tasks/{id}/complete [patch]
func (h *AgendaHandler) CompleteTask(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.CompleteTaskRequest
	if c.Request.ContentLength > 0 && !bindJSON(c, &req) {
		return
	}
	completed := req.Completed == nil || *req.Completed

	task, err := h.agendaService.CompleteTask(c.Request.Context(), id, completed)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Task updated successfully", task)
}

// DeleteTask removes a task
// @Summary Delete Task
// @Tags agenda
// @Security BearerAuth
// @Param id path string true "Task ID"
// @Success 204
// @Router /tasks/{id} [delete]
func (h *AgendaHandler) DeleteTask(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.agendaService.DeleteTask(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Calendar returns tasks and events between start and end, the range
// FullCalendar requests for the visible view
// @Summary Calendar Feed
// @Tags agenda
// @Security BearerAuth
// @Produce json
// @Param start query string true "Range start"
// @Param end query string true "Range end"
// @Success 200 {object} response.APIResponse
// @Router /events/calendar [get]
func (h *AgendaHandler) Calendar(c *gin.Context) {
	start, ok := queryTime(c, "start")
	if !ok {
		return
	}
	end, ok := queryTime(c, "end")
	if !ok {
		return
	}
	if end.Before(start) {
		response.BadRequest(c, "end must not be before start")
		return
	}
	events, err := h.agendaService.Calendar(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Calendar retrieved successfully", events)
}

// CreateEvent adds a calendar event
// @Summary Create Event
// @Tags agenda
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.EventRequest true "Event"
// @Success 201 {object} response.APIResponse
// @Router /events [post]
func (h *AgendaHandler) CreateEvent(c *gin.Context) {
	var req request.EventRequest
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.agendaService.CreateEvent(c.Request.Context(), eventInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Event created successfully", event)
}

// GetEvent returns an event
// @Summary Get Event
// @Tags agenda
// @Security BearerAuth
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} response.APIResponse
// @Router /events/{id} [get]
func (h *AgendaHandler) GetEvent(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	event, err := h.agendaService.GetEvent(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Event retrieved successfully", event)
}

// UpdateEvent changes an event
// @Summary Update Event
// @Tags agenda
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Event ID"
// @Param request body request.EventRequest true "Changes"
// @Success 200 {object} response.APIResponse
// @Router /events/{id} [put]
func (h *AgendaHandler) UpdateEvent(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	var req request.EventRequest
	if !bindJSON(c, &req) {
		return
	}
	event, err := h.agendaService.UpdateEvent(c.Request.Context(), id, eventInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Event updated successfully", event)
}

// DeleteEvent removes an event
// @Summary Delete Event
// @Tags agenda
// @Security BearerAuth
// @Param id path string true "Event ID"
// @Success 204
// @Router /events/{id} [delete]
func (h *AgendaHandler) DeleteEvent(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}
	if err := h.agendaService.DeleteEvent(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Notifications counts what needs the caller's attention today
// @Summary Notifications
// @Tags agenda
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.APIResponse
// @Router /notifications [get]
func (h *AgendaHandler) Notifications(c *gin.Context) {
	summary, err := h.agendaService.Notifications(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Notifications retrieved successfully", summary)
}
