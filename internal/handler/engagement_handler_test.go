package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/engage-api/internal/dto"
	"github.com/noah-isme/engage-api/internal/handler"
	"github.com/noah-isme/engage-api/internal/middleware"
	"github.com/noah-isme/engage-api/internal/service"
)

const testSecret = "test-secret"

type mockEngagementService struct {
	comments       []dto.CommentResponse
	comment        dto.CommentResponse
	reply          dto.ReplyCreatedResponse
	likes          []dto.LikeResponse
	liked          bool
	err            error
	lastTags       []string
	lastExternalID string
	lastTargetID   uint
}

func (m *mockEngagementService) ListComments(_ context.Context, tags []string) ([]dto.CommentResponse, error) {
	m.lastTags = tags
	return m.comments, m.err
}

func (m *mockEngagementService) CreateComment(_ context.Context, externalID string, _ dto.CommentCreateRequest) (dto.CommentResponse, error) {
	m.lastExternalID = externalID
	return m.comment, m.err
}

func (m *mockEngagementService) CreateReply(_ context.Context, commentID uint, externalID string, _ dto.ReplyCreateRequest) (dto.ReplyCreatedResponse, error) {
	m.lastTargetID = commentID
	m.lastExternalID = externalID
	return m.reply, m.err
}

func (m *mockEngagementService) ToggleCommentLike(_ context.Context, commentID uint, externalID string) (bool, error) {
	m.lastTargetID = commentID
	m.lastExternalID = externalID
	return m.liked, m.err
}

func (m *mockEngagementService) ToggleReplyLike(_ context.Context, replyID uint, externalID string) (bool, error) {
	m.lastTargetID = replyID
	m.lastExternalID = externalID
	return m.liked, m.err
}

func (m *mockEngagementService) UserLikes(_ context.Context, _ string, _ string) ([]dto.LikeResponse, error) {
	return m.likes, m.err
}

func newTestApp(svc service.EngagementService) *fiber.App {
	app := fiber.New()
	api := app.Group("/api/v1")
	h := handler.NewEngagementHandler(svc, zerolog.New(io.Discard))
	h.Register(api, middleware.NewIdentity(testSecret), nil)
	return app
}

func signToken(t *testing.T, sub string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func decodeError(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Error
}

func TestListCommentsEmptyStoreReturnsEmptyArray(t *testing.T) {
	svc := &mockEngagementService{comments: []dto.CommentResponse{}}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/comments", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "[]", strings.TrimSpace(string(raw)))
}

func TestListCommentsForwardsTagFilter(t *testing.T) {
	svc := &mockEngagementService{comments: []dto.CommentResponse{}}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/comments?tags=go,%20web", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, []string{"go", "web"}, svc.lastTags)
}

func TestCreateCommentRequiresIdentity(t *testing.T) {
	svc := &mockEngagementService{}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments", strings.NewReader(`{"content":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateCommentSuccess(t *testing.T) {
	svc := &mockEngagementService{comment: dto.CommentResponse{ID: 1, Content: "hi", Tags: []string{"go"}}}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments", strings.NewReader(`{"content":"hi","tags":["go"]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, "ext-1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "ext-1", svc.lastExternalID)

	var body dto.CommentResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, uint(1), body.ID)
}

func TestCreateCommentUnsyncedUser(t *testing.T) {
	svc := &mockEngagementService{err: service.ErrUserNotFound}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments", strings.NewReader(`{"content":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, "ext-1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, "user not found", decodeError(t, resp))
}

func TestCreateCommentOverlongContent(t *testing.T) {
	svc := &mockEngagementService{err: service.ErrContentTooLong}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments", strings.NewReader(`{"content":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, "ext-1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "content too long after sanitization", decodeError(t, resp))
}

func TestToggleCommentLike(t *testing.T) {
	svc := &mockEngagementService{liked: true}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/42/like", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "ext-1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(42), svc.lastTargetID)

	var body dto.ToggleLikeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.True(t, body.Liked)
}

func TestToggleCommentLikeUnknownComment(t *testing.T) {
	svc := &mockEngagementService{err: service.ErrCommentNotFound}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/999/like", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "ext-1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Equal(t, "comment not found", decodeError(t, resp))
}

func TestToggleCommentLikeInvalidID(t *testing.T) {
	svc := &mockEngagementService{}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/abc/like", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "ext-1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateReplyReturnsSubtree(t *testing.T) {
	svc := &mockEngagementService{reply: dto.ReplyCreatedResponse{
		Reply:   dto.ReplyResponse{ID: 7, CommentID: 42, Content: "child"},
		Comment: dto.CommentResponse{ID: 42, Content: "parent"},
	}}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/comments/42/replies", strings.NewReader(`{"content":"child"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, "ext-1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body dto.ReplyCreatedResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, uint(7), body.Reply.ID)
	require.Equal(t, uint(42), body.Comment.ID)
}

func TestToggleReplyLikeRoute(t *testing.T) {
	svc := &mockEngagementService{liked: false}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/replies/5/like", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "ext-1"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(5), svc.lastTargetID)

	var body dto.ToggleLikeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.False(t, body.Liked)
}
