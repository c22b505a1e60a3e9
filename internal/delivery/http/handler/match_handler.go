package handler

import (
	"net/http"
	"strconv"

	"github.com/gdugdh24/sparkchat-backend/internal/domain"
	"github.com/gdugdh24/sparkchat-backend/internal/usecase/match"
	"github.com/gin-gonic/gin"
)

type MatchHandler struct {
	matchUseCase *match.MatchUseCase
}

func NewMatchHandler(matchUseCase *match.MatchUseCase) *MatchHandler {
	return &MatchHandler{
		matchUseCase: matchUseCase,
	}
}

// Like handles POST /matches/like
// @Summary Like a user
// @Description Record a like; a mutual like creates the match and its conversation
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body match.LikeRequest true "Target user"
// @Success 200 {object} domain.LikeResult
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches/like [post]
func (h *MatchHandler) Like(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req match.LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.matchUseCase.LikeAndMatch(c.Request.Context(), userID, req.TargetUserID)
	if err != nil {
		respondError(c, err, "failed to like user")
		return
	}

	c.JSON(http.StatusOK, result)
}

// Pass handles POST /matches/pass
// @Summary Pass on a user
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body match.LikeRequest true "Target user"
// @Success 200 {object} map[string]bool
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /matches/pass [post]
func (h *MatchHandler) Pass(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req match.LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	alreadyPassed, err := h.matchUseCase.Pass(c.Request.Context(), userID, req.TargetUserID)
	if err != nil {
		respondError(c, err, "failed to pass user")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"alreadyPassed": alreadyPassed,
	})
}

// ListMatches handles GET /matches
// @Summary List my matches
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Success 200 {object} map[string][]domain.MatchSummary
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches [get]
func (h *MatchHandler) ListMatches(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	matches, err := h.matchUseCase.ListMatches(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "failed to list matches")
		return
	}
	if matches == nil {
		matches = []*domain.MatchSummary{}
	}

	c.JSON(http.StatusOK, gin.H{
		"matches": matches,
	})
}

// Discover handles GET /matches/discovery
// @Summary Discover candidates
// @Description Compatible users the caller has not liked, passed or matched yet
// @Tags matches
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Max users (default 20, max 50)"
// @Success 200 {object} map[string][]domain.User
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /matches/discovery [get]
func (h *MatchHandler) Discover(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "invalid limit",
			})
			return
		}
		limit = n
	}

	users, err := h.matchUseCase.Discover(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err, "failed to discover users")
		return
	}
	if users == nil {
		users = []*domain.User{}
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
	})
}

// EnsureConversation handles POST /matches/conversation
// @Summary Get or create the conversation of a match
// @Tags matches
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body match.EnsureConversationRequest true "Match"
// @Success 200 {object} domain.Conversation
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /matches/conversation [post]
func (h *MatchHandler) EnsureConversation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req match.EnsureConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	conversation, err := h.matchUseCase.EnsureConversation(c.Request.Context(), userID, req.MatchID)
	if err != nil {
		respondError(c, err, "failed to get conversation")
		return
	}

	c.JSON(http.StatusOK, conversation)
}
