package transport

import (
	"net/http"
)

type registerRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birthDate"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (s *server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := s.users.Register(r.Context(), req.Name, req.Email, req.Phone, req.BirthDate)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]userResponse{"user": newUserResponse(user)})
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	token, user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: newUserResponse(user)})
}

func (s *server) me(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.FindUser(r.Context(), identityOf(r).UserID)
	if err != nil {
		writeError(w, unauthorizedIfMissing(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]userResponse{"user": newUserResponse(user)})
}
