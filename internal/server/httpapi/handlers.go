package httpapi

import (
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emotune/emotune/internal/common"
	"github.com/emotune/emotune/internal/metrics"
	"github.com/emotune/emotune/internal/server/auth"
	"github.com/emotune/emotune/internal/server/models"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type sessionRequest struct {
	OpenID      string  `json:"openId" binding:"required"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	LoginMethod *string `json:"loginMethod"`
}

type generateRequest struct {
	Emotion   string `json:"emotion" binding:"required"`
	Color     string `json:"color" binding:"required"`
	Intensity *int   `json:"intensity" binding:"omitempty,min=0,max=100"`
	Notes     string `json:"notes"`
}

type userView struct {
	ID           int64     `json:"id"`
	OpenID       string    `json:"openId"`
	Name         *string   `json:"name"`
	Email        *string   `json:"email"`
	LoginMethod  *string   `json:"loginMethod"`
	Role         string    `json:"role"`
	LastSignedIn time.Time `json:"lastSignedIn"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toUserView(u *models.User) *userView {
	if u == nil {
		return nil
	}
	v := &userView{
		ID:           u.ID,
		OpenID:       u.OpenID,
		Role:         string(u.Role),
		LastSignedIn: u.LastSignedIn,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
	if u.Name.Valid {
		v.Name = &u.Name.String
	}
	if u.Email.Valid {
		v.Email = &u.Email.String
	}
	if u.LoginMethod.Valid {
		v.LoginMethod = &u.LoginMethod.String
	}
	return v
}

// createSession upserts the caller's identity and issues a session
// token. It stands in for the upstream OAuth gateway, so the supplied
// identity is trusted as-is.
func (s *Server) createSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	patch := &models.UserUpsert{
		OpenID:       req.OpenID,
		LastSignedIn: &now,
	}
	if req.Name != nil {
		patch.Name = models.PatchValue(*req.Name)
	}
	if req.Email != nil {
		patch.Email = models.PatchValue(*req.Email)
	}
	if req.LoginMethod != nil {
		patch.LoginMethod = models.PatchValue(*req.LoginMethod)
	}

	if err := s.users.Upsert(c.Request.Context(), patch); err != nil {
		if errors.Is(err, common.ErrOpenIDRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	user, err := s.users.GetByOpenID(c.Request.Context(), req.OpenID)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	var userID int64
	if user != nil {
		userID = user.ID
	}

	token, err := auth.GenerateToken(userID, req.OpenID, s.jwtSecret, s.tokenValidity)
	if err != nil {
		s.logger.Error(c.Request.Context(), "failed to sign session token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": toUserView(user)})
}

func (s *Server) currentUser(c *gin.Context) {
	_, openID := callerIdentity(c)

	user, err := s.users.GetByOpenID(c.Request.Context(), openID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": toUserView(user)})
}

func (s *Server) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !colorPattern.MatchString(req.Color) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "color must match #RRGGBB"})
		return
	}

	intensity := 50
	if req.Intensity != nil {
		intensity = *req.Intensity
	}

	userID, _ := callerIdentity(c)

	params, err := s.emotions.Generate(c.Request.Context(), userID, req.Emotion, req.Color, intensity, req.Notes)
	if err != nil {
		if errors.Is(err, common.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	metrics.RecordsGenerated.Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "musicParams": params})
}

type historyRecordView struct {
	ID          int64       `json:"id"`
	Emotion     string      `json:"emotion"`
	Color       string      `json:"color"`
	Intensity   int         `json:"intensity"`
	MusicParams interface{} `json:"musicParams"`
	Notes       string      `json:"notes,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (s *Server) history(c *gin.Context) {
	userID, _ := callerIdentity(c)

	records, err := s.emotions.History(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	views := make([]*historyRecordView, 0, len(records))
	for _, rec := range records {
		views = append(views, &historyRecordView{
			ID:          rec.ID,
			Emotion:     rec.Emotion,
			Color:       rec.Color,
			Intensity:   rec.Intensity,
			MusicParams: rec.MusicParams,
			Notes:       rec.Notes,
			CreatedAt:   rec.CreatedAt,
			UpdatedAt:   rec.UpdatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"records": views})
}

func (s *Server) deleteRecord(c *gin.Context) {
	recordID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid record id"})
		return
	}

	userID, _ := callerIdentity(c)

	if err := s.emotions.Delete(c.Request.Context(), userID, recordID); err != nil {
		if errors.Is(err, common.ErrStoreUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	metrics.RecordsDeleted.Inc()
	c.JSON(http.StatusOK, gin.H{"success": true})
}
