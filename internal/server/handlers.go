package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"examprep/internal/version"
	"examprep/pkg/preptypes"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type confirmRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type frameworkRequest struct {
	Topic string `json:"topic"`
}

type followUpRequest struct {
	Topic    string `json:"topic"`
	Question string `json:"question"`
}

// SignUpResponse stands in for the verification email.
type SignUpResponse struct {
	Email            string `json:"email"`
	VerificationCode string `json:"verificationCode"`
	ExpiresInSeconds int64  `json:"expiresInSeconds"`
}

// UserResponse reports the current session; User is null when logged out.
type UserResponse struct {
	User *preptypes.Session `json:"user"`
}

// HistoryResponse lists recent topics, most recent first.
type HistoryResponse struct {
	Topics []string `json:"topics"`
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": version.Version})
}

func (s *Server) signUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondInvalidBody(c, err)
		return
	}
	ws, err := workspaceFrom(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	code, err := ws.Auth.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, SignUpResponse{
		Email:            req.Email,
		VerificationCode: code,
		ExpiresInSeconds: int64(s.codeTTL.Seconds()),
	})
}

func (s *Server) confirmSignUp(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondInvalidBody(c, err)
		return
	}
	ws, err := workspaceFrom(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	session, err := ws.Auth.ConfirmSignUp(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, UserResponse{User: session})
}

func (s *Server) logIn(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondInvalidBody(c, err)
		return
	}
	ws, err := workspaceFrom(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	session, err := ws.Auth.LogIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, UserResponse{User: session})
}

func (s *Server) logOut(c *gin.Context) {
	ws, err := workspaceFrom(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	ws.Auth.LogOut(c.Request.Context())
	c.Status(http.StatusNoContent)
}

func (s *Server) currentUser(c *gin.Context) {
	ws, err := workspaceFrom(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, UserResponse{User: ws.Auth.GetCurrentUser(c.Request.Context())})
}

func (s *Server) generateFramework(c *gin.Context) {
	var req frameworkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondInvalidBody(c, err)
		return
	}
	ws, err := workspaceFrom(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	result, err := ws.Generate(c.Request.Context(), req.Topic)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (s *Server) askFollowUp(c *gin.Context) {
	var req followUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondInvalidBody(c, err)
		return
	}
	ws, err := workspaceFrom(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	result, err := ws.AskFollowUp(c.Request.Context(), req.Topic, req.Question)
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, result)
}

func (s *Server) listHistory(c *gin.Context) {
	ws, err := workspaceFrom(c)
	if err != nil {
		RespondError(c, err)
		return
	}

	topics, err := ws.CurrentHistory(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	RespondOK(c, HistoryResponse{Topics: topics})
}

func (s *Server) clearHistory(c *gin.Context) {
	ws, err := workspaceFrom(c)
	if err != nil {
		RespondError(c, err)
		return
	}
	if err := ws.ClearCurrentHistory(c.Request.Context()); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
