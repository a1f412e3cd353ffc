package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cyberkids_accounts/internal/models"
	"cyberkids_accounts/internal/service"
)

const (
	statusOK        = "ok"
	msgChildCreated = "child account created"
)

// CreateChildRequest is a parent's request to add a child account.
type CreateChildRequest struct {
	ParentUsername string `json:"parent_username" example:"alice"`
	ChildName      string `json:"child_name" example:"kiddo"`
	ChildAge       *int   `json:"child_age,omitempty" example:"8"`
	ChildPassword  string `json:"child_password" example:"kidpass"`
}

type CreateChildResponse struct {
	Message       string `json:"message"`
	ChildUsername string `json:"child_username"`
}

// AccountResponse is the authenticated caller's own account.
type AccountResponse struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	Age          *int    `json:"age,omitempty"`
	LinkedParent *string `json:"linked_parent"`
}

type ChildrenResponse struct {
	Count    int                  `json:"count"`
	Children []models.StudentView `json:"children"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get a student
// @Tags         students
// @Produce      json
// @Param        username  path      string  true  "student username"
// @Success      200       {object}  models.StudentView
// @Failure      404       {object}  map[string]string
// @Router       /students/{username} [get]
func (h *Handler) getStudent(c *gin.Context) {
	username := c.Param("username")
	view, err := h.services.GetStudent(c.Request.Context(), username)
	if err != nil {
		h.respondError(c, "student_lookup_failed", err, "username", username)
		return
	}
	c.JSON(http.StatusOK, view)
}

// @Summary      Create a child account
// @Description  The child is a student linked to the named parent.
// @Tags         students
// @Accept       json
// @Produce      json
// @Param        input  body      CreateChildRequest  true  "child"
// @Success      201    {object}  CreateChildResponse
// @Failure      400    {object}  map[string]string
// @Failure      404    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /children [post]
func (h *Handler) createChild(c *gin.Context) {
	var input CreateChildRequest
	if !h.bindJSON(c, &input, malformed("error")) {
		return
	}

	username, err := h.services.CreateChild(c.Request.Context(), service.CreateChildInput{
		ParentUsername: input.ParentUsername,
		ChildUsername:  input.ChildName,
		ChildAge:       input.ChildAge,
		ChildPassword:  input.ChildPassword,
	})
	if err != nil {
		h.respondError(c, "children_create_failed", err,
			"parent", input.ParentUsername, "child", input.ChildName)
		return
	}

	h.metrics.RecordChildCreated()
	if h.log != nil {
		h.log.Infow("child_created", "parent", input.ParentUsername, "child", username)
	}
	c.JSON(http.StatusCreated, CreateChildResponse{Message: msgChildCreated, ChildUsername: username})
}

// @Summary      Current account
// @Tags         api
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  AccountResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/me [get]
func (h *Handler) me(c *gin.Context) {
	username := c.GetString(ctxUsername)
	a, err := h.services.GetAccount(c.Request.Context(), username)
	if err != nil {
		h.respondError(c, "me_lookup_failed", err, "username", username)
		return
	}
	c.JSON(http.StatusOK, AccountResponse{
		ID:           a.ID,
		Username:     a.Username,
		Email:        a.Email,
		Role:         string(a.Role),
		Age:          a.Age,
		LinkedParent: a.LinkedParentUsername,
	})
}

// @Summary      List my children
// @Tags         api
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ChildrenResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /api/v1/children [get]
func (h *Handler) myChildren(c *gin.Context) {
	username := c.GetString(ctxUsername)
	children, err := h.services.ListChildren(c.Request.Context(), username)
	if err != nil {
		h.respondError(c, "children_list_failed", err, "username", username)
		return
	}
	c.JSON(http.StatusOK, ChildrenResponse{Count: len(children), Children: children})
}
