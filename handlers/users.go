package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/videoauth/auth-service/internal/users"
	"github.com/videoauth/auth-service/pkg/logger"
)

// UsersHandler serves directory mirror lookups.
type UsersHandler struct {
	repo users.Repository
}

func NewUsersHandler(repo users.Repository) *UsersHandler {
	return &UsersHandler{repo: repo}
}

// Register mounts the lookup routes under /usuarios, all bearer-protected.
func (h *UsersHandler) Register(rg *gin.RouterGroup, authn gin.HandlerFunc) {
	u := rg.Group("/usuarios", authn)
	u.GET("/email/:email", h.FindByEmail)
	u.GET("/cpf/:cpf", h.FindByNationalID)
}

func (h *UsersHandler) FindByEmail(c *gin.Context) {
	h.respondWithLookup(c, func() (*users.User, error) {
		return h.repo.FindByEmail(c.Request.Context(), c.Param("email"))
	})
}

func (h *UsersHandler) FindByNationalID(c *gin.Context) {
	h.respondWithLookup(c, func() (*users.User, error) {
		return h.repo.FindByNationalID(c.Request.Context(), c.Param("cpf"))
	})
}

func (h *UsersHandler) respondWithLookup(c *gin.Context, find func() (*users.User, error)) {
	u, err := find()
	if err != nil {
		logger.Errorf("directory lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "directory lookup failed"})
		return
	}
	if u == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}
