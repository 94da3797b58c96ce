package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/fintrack/internal/common"
	"github.com/dmitrijs2005/fintrack/internal/server/models"
	"github.com/dmitrijs2005/fintrack/internal/server/services"
	"github.com/go-chi/chi/v5"
)

const msgNotOwner = "You can only change your own account"

// ownID returns the {id} path parameter after checking it names the
// authenticated caller.
func (h *Handler) ownID(r *http.Request) (string, error) {
	id := chi.URLParam(r, "id")
	if err := h.validateID(id); err != nil {
		return "", err
	}
	if u, ok := currentUser(r.Context()); !ok || u.ID != id {
		return "", common.NewAppError(common.ErrorForbidden, msgNotOwner)
	}
	return id, nil
}

func (h *Handler) updatePassword(w http.ResponseWriter, r *http.Request) {
	id, err := h.ownID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updatePasswordRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	u, err := h.svc.UpdatePassword(r.Context(), id, req.OldPassword, req.NewPassword)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, fmt.Sprintf("Password updated for User: %s successfully", u.Email), idEmail{ID: u.ID, Email: u.Email})
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := h.ownID(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req updateUserRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	u, err := h.svc.UpdateProfile(r.Context(), id, services.ProfileUpdate{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User updated successfully", toUserResponse(u))
}

func (h *Handler) suspendUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.validateID(id); err != nil {
		h.writeError(w, r, err)
		return
	}

	if _, err := h.svc.Suspend(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User Account Suspended.", nil)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.validateID(id); err != nil {
		h.writeError(w, r, err)
		return
	}

	u, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, "User details retrieved successfully", toUserResponse(u))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	q, err := h.parseListQuery(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	page, err := h.svc.ListUsers(r.Context(), models.Page{Page: q.Page, PerPage: q.PerPage})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var totalPages int64
	if page.PerPage > 0 {
		totalPages = (page.Total + int64(page.PerPage) - 1) / int64(page.PerPage)
	}
	out := usersPage{
		Pagination: pagination{
			Page:       page.Page,
			PerPage:    page.PerPage,
			Total:      page.Total,
			TotalPages: totalPages,
		},
		Users: make([]userResponse, 0, len(page.Users)),
	}
	for i := range page.Users {
		out.Users = append(out.Users, toUserResponse(&page.Users[i]))
	}

	writeSuccess(w, http.StatusOK, "Users retrieved successfully", out)
}

func (h *Handler) parseListQuery(r *http.Request) (listUsersQuery, error) {
	var q listUsersQuery
	for name, dst := range map[string]*int{"page": &q.Page, "perPage": &q.PerPage} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return q, common.NewAppError(common.ErrorValidation, fmt.Sprintf("%s must be a number", name))
		}
		*dst = n
	}
	if err := h.validateStruct(&q); err != nil {
		return q, err
	}
	return q, nil
}
