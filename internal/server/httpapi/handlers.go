package httpapi

import (
	"net/http"

	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/messages"
	"github.com/jmross14/PelaghiSoftwareWebServer/internal/server/models"
)

func (s *Server) handleGetAllUsers(w http.ResponseWriter, r *http.Request) {
	resp := s.pipeline.Handle(r.Context(), r.Header.Get("Authorization"), messages.GetAll{})
	writeResponse(w, resp)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	resp := s.pipeline.Handle(r.Context(), r.Header.Get("Authorization"), messages.GetOne{UserName: name})
	writeResponse(w, resp)
}

func (s *Server) handleAddUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := parseJSON(r, &user); err != nil {
		writeBadRequest(w)
		return
	}

	resp := s.pipeline.Handle(r.Context(), r.Header.Get("Authorization"), messages.Insert{User: user})
	writeResponse(w, resp)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := parseJSON(r, &user); err != nil {
		writeBadRequest(w)
		return
	}

	resp := s.pipeline.Handle(r.Context(), r.Header.Get("Authorization"), messages.Update{User: user})
	writeResponse(w, resp)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := parseJSON(r, &user); err != nil {
		writeBadRequest(w)
		return
	}

	resp := s.pipeline.Handle(r.Context(), r.Header.Get("Authorization"), messages.Delete{User: user})
	writeResponse(w, resp)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := parseJSON(r, &user); err != nil {
		writeBadRequest(w)
		return
	}

	resp := s.pipeline.Login(r.Context(), user)
	writeResponse(w, resp)
}
