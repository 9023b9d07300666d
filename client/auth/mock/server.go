package mock

import "net/http/httptest"

// HTTPTestServer runs a Service on an httptest server
type HTTPTestServer struct {
	*Service
	Server *httptest.Server
	// BaseURL is the API base URL, e.g. http://127.0.0.1:port/api
	BaseURL string
}

func NewHTTPTestServer(opts ...Option) (*HTTPTestServer, error) {
	service, err := NewService(opts...)
	if err != nil {
		return nil, err
	}
	server := &HTTPTestServer{Service: service}
	server.Server = httptest.NewServer(service.Handler())
	server.BaseURL = server.Server.URL + service.BasePath
	return server, nil
}

func (s *HTTPTestServer) Close() {
	if s.Server != nil {
		s.Server.Close()
	}
	s.Server = nil
}
