package http

import (
	"context"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/team"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/response"
)

type TeamHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ListMembers(w http.ResponseWriter, r *http.Request)
	AddMembers(w http.ResponseWriter, r *http.Request)
	RemoveMembers(w http.ResponseWriter, r *http.Request)
}

type teamHandlerImpl struct {
	teamService team.TeamService
}

func NewTeamHandler(teamService team.TeamService) TeamHandler {
	return &teamHandlerImpl{teamService: teamService}
}

func (h *teamHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListTeams(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, teams)
}

func (h *teamHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	result, err := h.teamService.GetTeam(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

func (h *teamHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req team.CreateTeamRequest
	if !decodeJSON(w, r, "CreateTeam", &req) {
		return
	}
	result, err := h.teamService.CreateTeam(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Team created successfully", result)
}

func (h *teamHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req team.UpdateTeamRequest
	if !decodeJSON(w, r, "UpdateTeam", &req) {
		return
	}
	req.ID = id

	result, err := h.teamService.UpdateTeam(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Team updated successfully", result)
}

func (h *teamHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.teamService.DeleteTeam(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Team deleted successfully", nil)
}

func (h *teamHandlerImpl) ListMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	members, err := h.teamService.ListMembers(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, members)
}

func (h *teamHandlerImpl) AddMembers(w http.ResponseWriter, r *http.Request) {
	h.changeMembers(w, r, h.teamService.AddMembers, "Members added")
}

func (h *teamHandlerImpl) RemoveMembers(w http.ResponseWriter, r *http.Request) {
	h.changeMembers(w, r, h.teamService.RemoveMembers, "Members removed")
}

func (h *teamHandlerImpl) changeMembers(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, req team.MembersRequest) ([]team.MemberResponse, error), message string) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req team.MembersRequest
	if !decodeJSON(w, r, "Members", &req) {
		return
	}
	req.TeamID = id

	members, err := apply(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, message, members)
}
