package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"examprep/internal/services"
	"examprep/internal/testutils"
	"examprep/internal/version"
	"examprep/pkg/preptypes"
)

const (
	// ClientCookie identifies one user agent; each gets its own storage namespace.
	ClientCookie = "examprep_client"

	// VersionHeader carries the server version on every response.
	VersionHeader = "X-Examprep-Version"

	// RequestIDHeader echoes or assigns a request id.
	RequestIDHeader = "X-Request-Id"

	clientCookieMaxAge = 365 * 24 * 60 * 60
	workspaceKey       = "workspace"
	clientIDKey        = "client_id"
)

// requestContext assigns a request id, stamps the version header and logs the request.
func (s *Server) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)
		c.Header(VersionHeader, version.Version)

		start := time.Now()
		c.Next()

		s.log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestID,
		)
	}
}

// clientWorkspace resolves the client-id cookie, issuing one when it is missing or
// not a UUID, and attaches a Workspace over that client's namespace.
func (s *Server) clientWorkspace() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, err := c.Cookie(ClientCookie)
		if err != nil || !validClientID(clientID) {
			clientID = testutils.GenerateClientID(s.testMode)
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ClientCookie, clientID, clientCookieMaxAge, "/", "", false, true)
			s.log.Debug("Issued client id", "client_id", clientID)
		}

		store, err := s.namespaces.Namespace(clientID)
		if err != nil {
			RespondError(c, preptypes.NewError(preptypes.ErrUnknown, err))
			return
		}

		c.Set(clientIDKey, clientID)
		c.Set(workspaceKey, s.newWorkspace(store))
		c.Next()
	}
}

func validClientID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func workspaceFrom(c *gin.Context) (*services.Workspace, error) {
	value, ok := c.Get(workspaceKey)
	if !ok {
		return nil, errors.New("no workspace attached to request")
	}
	ws, ok := value.(*services.Workspace)
	if !ok {
		return nil, errors.New("workspace has unexpected type")
	}
	return ws, nil
}
