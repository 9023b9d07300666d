package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	authsession "github.com/viant/authsession"
	"github.com/viant/authsession/client/access"
	"github.com/viant/authsession/client/api"
	"github.com/viant/authsession/client/identity"
	"github.com/viant/scy"
	"github.com/viant/scy/cred"
)

// Service executes commands on a session
type Service struct {
	session *authsession.Session
	output  io.Writer
}

// Login authenticates with flags or with credentials loaded from a scy secret
func (s *Service) Login(ctx context.Context, cmd *LoginCommand) error {
	request := &identity.LoginRequest{
		LoginType:    cmd.Type,
		UserAccount:  cmd.Account,
		UserPassword: cmd.Password,
		UserPhone:    cmd.Phone,
		UserEmail:    cmd.Email,
		LoginCode:    cmd.Code,
	}
	if cmd.SecretURL != "" {
		basic, err := loadCredentials(ctx, cmd.SecretURL, cmd.SecretKey)
		if err != nil {
			return err
		}
		request.UserAccount = basic.Username
		request.UserPassword = basic.Password
	}
	user, err := s.session.Login(ctx, request)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.output, "logged in as %v (%v)\n", user.UserAccount, user.UserRole)
	return err
}

// Whoami prints the current user
func (s *Service) Whoami(ctx context.Context) error {
	return s.print(s.session.CurrentUser(ctx))
}

// Logout ends the session
func (s *Service) Logout(ctx context.Context) error {
	if err := s.session.Logout(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(s.output, "logged out")
	return err
}

// Get calls path and prints its data
func (s *Service) Get(ctx context.Context, path string) error {
	data, err := api.Invoke[json.RawMessage](ctx, s.session.API(), http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return s.print(data)
}

// Check evaluates access to path
func (s *Service) Check(ctx context.Context, requirement identity.Role, path string) error {
	decision := s.session.Guard().Evaluate(ctx, access.Route{Path: path, Access: requirement})
	if decision.Allow {
		_, err := fmt.Fprintf(s.output, "allow %v\n", path)
		return err
	}
	_, err := fmt.Fprintf(s.output, "deny %v -> %v\n", path, decision.Redirect.Location())
	return err
}

func (s *Service) print(value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.output, string(data))
	return err
}

func loadCredentials(ctx context.Context, URL, key string) (*cred.Basic, error) {
	resource := scy.NewResource(cred.Basic{}, URL, key)
	secret, err := scy.New().Load(ctx, resource)
	if err != nil {
		return nil, fmt.Errorf("failed to load credentials %v: %w", URL, err)
	}
	switch actual := secret.Target.(type) {
	case *cred.Basic:
		return actual, nil
	case cred.Basic:
		return &actual, nil
	}
	return nil, fmt.Errorf("unsupported credentials type: %T", secret.Target)
}

// NewService creates a service
func NewService(session *authsession.Session, output io.Writer) *Service {
	return &Service{session: session, output: output}
}
