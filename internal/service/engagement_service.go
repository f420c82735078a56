package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/noah-isme/engage-api/internal/dto"
	"github.com/noah-isme/engage-api/internal/models"
	"github.com/noah-isme/engage-api/internal/observability"
	"github.com/noah-isme/engage-api/internal/repository"
)

// Sentinel errors surfaced to the HTTP boundary.
var (
	// ErrUserNotFound means the caller's external identity has never been
	// synced into the user directory.
	ErrUserNotFound = errors.New("user not found")
	// ErrCommentNotFound means the referenced comment does not exist.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrReplyNotFound means the referenced reply does not exist.
	ErrReplyNotFound = errors.New("reply not found")
	// ErrNotOwner means the caller requested another user's private data.
	ErrNotOwner = errors.New("caller does not own the requested resource")
	// ErrEmptyContent means the content was blank after sanitization.
	ErrEmptyContent = errors.New("content empty after sanitization")
	// ErrContentTooLong means the content exceeded the stored length bound
	// after sanitization.
	ErrContentTooLong = errors.New("content too long after sanitization")
)

const feedCacheKey = "engagement:feed:v1"

// EngagementService orchestrates comment, reply, and like use-cases.
type EngagementService interface {
	ListComments(ctx context.Context, tags []string) ([]dto.CommentResponse, error)
	CreateComment(ctx context.Context, externalID string, payload dto.CommentCreateRequest) (dto.CommentResponse, error)
	CreateReply(ctx context.Context, commentID uint, externalID string, payload dto.ReplyCreateRequest) (dto.ReplyCreatedResponse, error)
	ToggleCommentLike(ctx context.Context, commentID uint, externalID string) (bool, error)
	ToggleReplyLike(ctx context.Context, replyID uint, externalID string) (bool, error)
	UserLikes(ctx context.Context, externalID, userID string) ([]dto.LikeResponse, error)
}

type engagementService struct {
	comments  repository.CommentRepository
	likes     repository.LikeRepository
	users     repository.UserRepository
	cache     *redis.Client
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    zerolog.Logger
	tracer    trace.Tracer
	sanitizer *bluemonday.Policy
}

// NewEngagementService constructs the engagement service. The cache client is
// optional; without it every read goes straight to the store.
func NewEngagementService(
	comments repository.CommentRepository,
	likes repository.LikeRepository,
	users repository.UserRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	validate *validator.Validate,
	logger zerolog.Logger,
) EngagementService {
	if cacheTTL <= 0 {
		cacheTTL = 2 * time.Minute
	}

	return &engagementService{
		comments:  comments,
		likes:     likes,
		users:     users,
		cache:     cache,
		cacheTTL:  cacheTTL,
		validator: validate,
		logger:    logger.With().Str("component", "engagement_service").Logger(),
		tracer:    otel.Tracer("github.com/noah-isme/engage-api/internal/service/engagement"),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// ListComments returns the comment feed newest first, each comment carrying
// its full reply and like graph. The unfiltered feed is served from the cache
// when warm; tag-filtered reads always hit the store.
func (s *engagementService) ListComments(ctx context.Context, tags []string) ([]dto.CommentResponse, error) {
	tags = dedupeLabels(tags)

	if len(tags) == 0 {
		if cached, ok := s.feedFromCache(ctx); ok {
			return cached, nil
		}
	}

	comments, err := s.comments.List(ctx, tags)
	if err != nil {
		return nil, err
	}

	response := dto.NewCommentResponseSlice(comments)

	if len(tags) == 0 {
		s.storeFeedInCache(ctx, response)
	}

	return response, nil
}

func (s *engagementService) CreateComment(ctx context.Context, externalID string, payload dto.CommentCreateRequest) (dto.CommentResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.CommentResponse{}, err
	}

	user, err := s.resolveUser(ctx, externalID)
	if err != nil {
		return dto.CommentResponse{}, err
	}

	content, err := s.sanitizeContent(payload.Content)
	if err != nil {
		return dto.CommentResponse{}, err
	}

	tags := dedupeLabels(payload.Tags)

	spanCtx, span := s.tracer.Start(ctx, "engagement.comment.create", trace.WithAttributes(
		attribute.String("engagement.user_id", user.ID),
		attribute.Int("engagement.tag_count", len(tags)),
	))
	defer span.End()

	comment := models.Comment{
		Content: content,
		UserID:  user.ID,
	}

	if err := s.comments.Create(spanCtx, &comment, tags); err != nil {
		span.RecordError(err)
		return dto.CommentResponse{}, err
	}

	s.invalidateFeed(ctx)
	s.logger.Info().Uint("comment_id", comment.ID).Str("user_id", user.ID).Msg("comment created")

	comment.User = user
	comment.Likes = []models.Like{}
	comment.Replies = []models.Reply{}

	return dto.NewCommentResponse(comment), nil
}

// CreateReply attaches a reply to an existing comment and returns the reply
// together with the parent comment re-expanded, so the caller can refresh the
// whole subtree without a second request.
func (s *engagementService) CreateReply(ctx context.Context, commentID uint, externalID string, payload dto.ReplyCreateRequest) (dto.ReplyCreatedResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ReplyCreatedResponse{}, err
	}

	user, err := s.resolveUser(ctx, externalID)
	if err != nil {
		return dto.ReplyCreatedResponse{}, err
	}

	content, err := s.sanitizeContent(payload.Content)
	if err != nil {
		return dto.ReplyCreatedResponse{}, err
	}

	if _, err := s.comments.Get(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ReplyCreatedResponse{}, ErrCommentNotFound
		}
		return dto.ReplyCreatedResponse{}, err
	}

	reply := models.Reply{
		CommentID: commentID,
		UserID:    user.ID,
		Content:   content,
	}

	if err := s.comments.CreateReply(ctx, &reply); err != nil {
		return dto.ReplyCreatedResponse{}, err
	}

	s.invalidateFeed(ctx)
	s.logger.Info().Uint("reply_id", reply.ID).Uint("comment_id", commentID).Str("user_id", user.ID).Msg("reply created")

	parent, err := s.comments.GetWithGraph(ctx, commentID)
	if err != nil {
		return dto.ReplyCreatedResponse{}, err
	}

	reply.User = user
	reply.Likes = []models.Like{}

	return dto.ReplyCreatedResponse{
		Reply:   dto.NewReplyResponse(reply),
		Comment: dto.NewCommentResponse(parent),
	}, nil
}

func (s *engagementService) ToggleCommentLike(ctx context.Context, commentID uint, externalID string) (bool, error) {
	user, err := s.resolveUser(ctx, externalID)
	if err != nil {
		return false, err
	}

	if _, err := s.comments.Get(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCommentNotFound
		}
		return false, err
	}

	liked, err := s.toggle(ctx, "comment",
		func() (models.Like, error) { return s.likes.GetByUserAndComment(ctx, user.ID, commentID) },
		models.Like{UserID: user.ID, CommentID: &commentID},
	)
	if err != nil {
		return false, err
	}

	s.invalidateFeed(ctx)
	return liked, nil
}

func (s *engagementService) ToggleReplyLike(ctx context.Context, replyID uint, externalID string) (bool, error) {
	user, err := s.resolveUser(ctx, externalID)
	if err != nil {
		return false, err
	}

	if _, err := s.comments.GetReply(ctx, replyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrReplyNotFound
		}
		return false, err
	}

	liked, err := s.toggle(ctx, "reply",
		func() (models.Like, error) { return s.likes.GetByUserAndReply(ctx, user.ID, replyID) },
		models.Like{UserID: user.ID, ReplyID: &replyID},
	)
	if err != nil {
		return false, err
	}

	s.invalidateFeed(ctx)
	return liked, nil
}

// UserLikes lists every like authored by the given user, both comment- and
// reply-targeted. The caller must be the user in question.
func (s *engagementService) UserLikes(ctx context.Context, externalID, userID string) ([]dto.LikeResponse, error) {
	user, err := s.resolveUser(ctx, externalID)
	if err != nil {
		return nil, err
	}

	if user.ID != userID {
		return nil, ErrNotOwner
	}

	likes, err := s.likes.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return dto.NewLikeResponseSlice(likes), nil
}

// toggle flips the like state for one (user, target) pair. The existence
// check is inherently racy; the store's unique index is the arbiter, and a
// duplicate-key failure on create means a concurrent call already produced
// the like, so the observable outcome is still "liked".
func (s *engagementService) toggle(ctx context.Context, target string, find func() (models.Like, error), fresh models.Like) (bool, error) {
	spanCtx, span := s.tracer.Start(ctx, "engagement.like.toggle", trace.WithAttributes(
		attribute.String("engagement.target", target),
		attribute.String("engagement.user_id", fresh.UserID),
	))
	defer span.End()

	existing, err := find()
	switch {
	case err == nil:
		if err := s.likes.Delete(spanCtx, existing.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// A concurrent toggle removed it first; the pair is unliked either way.
				observability.LikeToggles().WithLabelValues(target, "unliked").Inc()
				return false, nil
			}
			span.RecordError(err)
			return false, err
		}
		observability.LikeToggles().WithLabelValues(target, "unliked").Inc()
		return false, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.likes.Create(spanCtx, &fresh); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				observability.LikeToggles().WithLabelValues(target, "liked").Inc()
				return true, nil
			}
			span.RecordError(err)
			return false, err
		}
		observability.LikeToggles().WithLabelValues(target, "liked").Inc()
		return true, nil

	default:
		span.RecordError(err)
		return false, err
	}
}

// sanitizeContent strips markup and enforces the stored length bound on the
// result. Escaping can expand otherwise-valid input ("&" becomes "&amp;"), so
// the bound has to be re-checked after sanitization, not just at the DTO.
func (s *engagementService) sanitizeContent(raw string) (string, error) {
	content := strings.TrimSpace(s.sanitizer.Sanitize(raw))
	if content == "" {
		return "", ErrEmptyContent
	}
	if utf8.RuneCountInString(content) > models.CommentMaxLength {
		return "", ErrContentTooLong
	}
	return content, nil
}

func (s *engagementService) resolveUser(ctx context.Context, externalID string) (models.User, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return models.User{}, ErrUserNotFound
	}

	user, err := s.users.GetByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}

	return user, nil
}

func (s *engagementService) feedFromCache(ctx context.Context) ([]dto.CommentResponse, bool) {
	if s.cache == nil {
		return nil, false
	}

	cached, err := s.cache.Get(ctx, feedCacheKey).Result()
	if err != nil || cached == "" {
		observability.FeedCache().WithLabelValues("miss").Inc()
		return nil, false
	}

	var response []dto.CommentResponse
	if err := json.Unmarshal([]byte(cached), &response); err != nil {
		observability.FeedCache().WithLabelValues("error").Inc()
		return nil, false
	}

	observability.FeedCache().WithLabelValues("hit").Inc()
	return response, true
}

func (s *engagementService) storeFeedInCache(ctx context.Context, response []dto.CommentResponse) {
	if s.cache == nil {
		return
	}

	payload, err := json.Marshal(response)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, feedCacheKey, payload, s.cacheTTL).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache comment feed")
	}
}

func (s *engagementService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}

	if err := s.cache.Del(ctx, feedCacheKey).Err(); err != nil {
		s.logger.Warn().Err(err).Msg("failed to invalidate comment feed cache")
	}
}

// dedupeLabels trims labels and drops blanks and duplicates, keeping
// first-seen order.
func dedupeLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, label := range labels {
		trimmed := strings.TrimSpace(label)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}
