package stub

import (
	"net/http"
	"strings"
	"time"

	"github.com/aerodesk/aerodesk/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userKey = "stub.user"

func (s *Server) issueToken(u domain.User) (string, error) {
	claims := jwt.MapClaims{
		"userId":   u.ID,
		"username": u.Username,
		"role":     string(u.Role),
		"exp":      time.Now().Add(s.cfg.TokenTTL()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *Server) parseToken(tokenString string) (*domain.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	username, _ := claims["username"].(string)

	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[username]
	if !ok {
		return nil, jwt.ErrTokenInvalidClaims
	}
	user := acc.user
	return &user, nil
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			fail(c, http.StatusUnauthorized, "401", "missing bearer token")
			return
		}
		user, err := s.parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			fail(c, http.StatusUnauthorized, "401", "invalid token")
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

func (s *Server) login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "400", "malformed login request")
		return
	}

	s.mu.Lock()
	acc, found := s.accounts[req.Username]
	s.mu.Unlock()
	if !found || acc.password != req.Password {
		fail(c, http.StatusUnauthorized, "401", "invalid username or password")
		return
	}

	access, err := s.issueToken(acc.user)
	if err != nil {
		fail(c, http.StatusInternalServerError, "500", "failed to issue token")
		return
	}
	refresh := uuid.NewString()

	s.mu.Lock()
	s.refreshTokens[refresh] = req.Username
	s.mu.Unlock()

	ok(c, gin.H{"accessToken": access, "refreshToken": refresh})
}

func (s *Server) refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "400", "malformed refresh request")
		return
	}

	s.mu.Lock()
	username, found := s.refreshTokens[req.RefreshToken]
	var acc account
	if found {
		delete(s.refreshTokens, req.RefreshToken)
		acc = s.accounts[username]
	}
	s.mu.Unlock()
	if !found {
		fail(c, http.StatusUnauthorized, "401", "unknown refresh token")
		return
	}

	access, err := s.issueToken(acc.user)
	if err != nil {
		fail(c, http.StatusInternalServerError, "500", "failed to issue token")
		return
	}
	next := uuid.NewString()

	s.mu.Lock()
	s.refreshTokens[next] = username
	s.mu.Unlock()

	ok(c, gin.H{"accessToken": access, "refreshToken": next})
}

func (s *Server) registerPassenger(c *gin.Context) {
	s.register(c, domain.RolePassenger)
}

// registerAgency is admin-gated; requireAuth already ran.
func (s *Server) registerAgency(c *gin.Context) {
	user := c.MustGet(userKey).(*domain.User)
	if user.Role != domain.RoleAdmin {
		fail(c, http.StatusForbidden, "403", "agency registration requires admin")
		return
	}
	s.register(c, domain.RoleAgency)
}

func (s *Server) register(c *gin.Context, role domain.Role) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "400", "username and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Username]; exists {
		fail(c, http.StatusConflict, "409", "username already taken")
		return
	}
	user := domain.User{
		ID:       uuid.NewString(),
		Username: req.Username,
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Role:     role,
	}
	s.accounts[req.Username] = account{password: req.Password, user: user}
	ok(c, user)
}

func (s *Server) logout(c *gin.Context) {
	// Stateless JWTs: nothing to revoke server-side beyond refresh
	// tokens, and the client clears its own session.
	ok(c, nil)
}

func (s *Server) currentUser(c *gin.Context) {
	ok(c, c.MustGet(userKey).(*domain.User))
}
