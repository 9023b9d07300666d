package mock

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/viant/authsession/client/identity"
	"github.com/viant/authsession/envelope"
)

const codeParams = 40000

// Write encodes an envelope response
func Write(w http.ResponseWriter, code int, data interface{}, message string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(envelope.Envelope[interface{}]{Code: code, Data: data, Message: message})
}

func (s *Service) loginHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	request := identity.LoginRequest{}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		Write(w, codeParams, nil, "invalid request")
		return
	}
	account, ok := s.accounts.Get(request.UserAccount)
	if !ok || account.Password != request.UserPassword {
		Write(w, codeParams, nil, "account or password is wrong")
		return
	}
	token, err := s.createJWT(account)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	user := account.User
	user.AccessToken = token
	Write(w, envelope.CodeSuccess, &user, "ok")
}

type refreshRequest struct {
	AccessToken string `json:"accessToken"`
}

func (s *Service) refreshHandler(w http.ResponseWriter, r *http.Request) {
	s.RefreshCount.Add(1)
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, _ := io.ReadAll(r.Body)
	request := refreshRequest{}
	if err := json.Unmarshal(data, &request); err != nil || request.AccessToken == "" {
		Write(w, codeParams, nil, "access token is required")
		return
	}
	if _, err := s.verifyJWT(request.AccessToken, true); err != nil {
		Write(w, envelope.CodeCredentialInvalid, nil, "access token is invalid")
		return
	}
	name, ok := s.sessions.Take(request.AccessToken)
	if !ok {
		Write(w, envelope.CodeNotAuthenticated, nil, "session not found")
		return
	}
	account, ok := s.accounts.Get(name)
	if !ok {
		Write(w, envelope.CodeNotAuthenticated, nil, "account not found")
		return
	}
	token, err := s.createJWT(account)
	if err != nil {
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	Write(w, envelope.CodeSuccess, token, "ok")
}

func (s *Service) identityHandler(w http.ResponseWriter, r *http.Request) {
	s.IdentityCount.Add(1)
	account, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	user := account.User
	Write(w, envelope.CodeSuccess, &user, "ok")
}

func (s *Service) logoutHandler(w http.ResponseWriter, r *http.Request) {
	s.LogoutCount.Add(1)
	_, token, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	s.sessions.Delete(token)
	Write(w, envelope.CodeSuccess, true, "ok")
}

func (s *Service) resourceHandler(w http.ResponseWriter, r *http.Request) {
	account, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	body, _ := io.ReadAll(r.Body)
	Write(w, envelope.CodeSuccess, map[string]string{
		"owner":  account.User.UserAccount,
		"method": r.Method,
		"body":   string(body),
	}, "ok")
}

func (s *Service) adminResourceHandler(w http.ResponseWriter, r *http.Request) {
	account, _, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if account.User.UserRole != identity.RoleAdmin {
		Write(w, envelope.CodeNoAuthorization, nil, "no authorization")
		return
	}
	Write(w, envelope.CodeSuccess, "admin resource", "ok")
}

// authenticate resolves the bearer token of r or answers with the matching auth failure code
func (s *Service) authenticate(w http.ResponseWriter, r *http.Request) (*Account, string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		Write(w, envelope.CodeNotAuthenticated, nil, "not logged in")
		return nil, "", false
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		Write(w, envelope.CodeCredentialInvalid, nil, "invalid authorization header")
		return nil, "", false
	}
	if _, err := s.verifyJWT(token, false); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			Write(w, envelope.CodeSessionExpired, nil, "login session has expired")
			return nil, "", false
		}
		Write(w, envelope.CodeCredentialInvalid, nil, "login credential is invalid")
		return nil, "", false
	}
	name, ok := s.sessions.Get(token)
	if !ok {
		Write(w, envelope.CodeNotAuthenticated, nil, "not logged in")
		return nil, "", false
	}
	account, ok := s.accounts.Get(name)
	if !ok {
		Write(w, envelope.CodeNotAuthenticated, nil, "not logged in")
		return nil, "", false
	}
	return account, token, true
}
