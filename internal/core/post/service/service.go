package postapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"postfeed/internal/config"
	postEntity "postfeed/internal/core/post"
	userEntity "postfeed/internal/core/user"
	"postfeed/internal/metrics"
	assetPort "postfeed/internal/ports/asset"
	postPort "postfeed/internal/ports/post"
	userPort "postfeed/internal/ports/user"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// DefaultPageSize is used when neither the caller nor the service sets one.
const DefaultPageSize = 2

// PostService owns the feed: ownership checks, persistence, image cleanup and
// a broadcast for every committed mutation.
type PostService struct {
	PostRepository postPort.PostRepository
	UserRepository userPort.UserRepository
	Assets         assetPort.Discarder
	Publisher      postPort.EventPublisher
	PageSize       int

	now func() time.Time
	// commitMu keeps event order equal to commit order.
	commitMu sync.Mutex
}

func NewPostService(
	postRepo postPort.PostRepository,
	userRepo userPort.UserRepository,
	assets assetPort.Discarder,
	publisher postPort.EventPublisher,
	pageSize int,
) *PostService {
	return &PostService{
		PostRepository: postRepo,
		UserRepository: userRepo,
		Assets:         assets,
		Publisher:      publisher,
		PageSize:       pageSize,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// ListFeed returns page (1-based) of the feed, newest first, plus the total
// number of posts. A page past the end is empty.
func (s *PostService) ListFeed(ctx context.Context, page, pageSize int) (*postPort.FeedPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1", postEntity.ErrValidationFailed)
	}
	size := pageSize
	if size <= 0 {
		size = s.PageSize
	}
	if size <= 0 {
		size = DefaultPageSize
	}

	total, err := s.PostRepository.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", postEntity.ErrNotFound, err)
	}
	// checked before the offset is computed, so a huge page cannot overflow it
	if pages := (total + int64(size) - 1) / int64(size); int64(page-1) >= pages {
		return &postPort.FeedPage{Posts: []*postPort.PostDTO{}, TotalItems: total}, nil
	}
	posts, err := s.PostRepository.FindPage(ctx, (page-1)*size, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", postEntity.ErrNotFound, err)
	}

	out := make([]*postPort.PostDTO, 0, len(posts))
	for _, p := range posts {
		out = append(out, postPort.ToDTO(p))
	}
	return &postPort.FeedPage{Posts: out, TotalItems: total}, nil
}

func (s *PostService) GetPost(ctx context.Context, postID string) (*postPort.PostDTO, error) {
	p, err := s.load(ctx, postID)
	if err != nil {
		return nil, err
	}
	return postPort.ToDTO(p), nil
}

// CreatePost stores a post owned by requesterID and announces it. The image
// at imagePath is already in the asset store.
func (s *PostService) CreatePost(ctx context.Context, requesterID, title, content, imagePath string) (*postPort.CreateResult, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" || imagePath == "" {
		s.discard(ctx, imagePath)
		return nil, fmt.Errorf("%w: title, content and image are required", postEntity.ErrValidationFailed)
	}
	uid, err := uuid.FromString(requesterID)
	if err != nil {
		s.discard(ctx, imagePath)
		return nil, fmt.Errorf("%w: invalid user id %q", postEntity.ErrValidationFailed, requesterID)
	}

	creator, err := s.UserRepository.FindByID(ctx, uid.String())
	if err != nil {
		s.discard(ctx, imagePath)
		if errors.Is(err, userEntity.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", postEntity.ErrNotFound, err)
		}
		return nil, fmt.Errorf("%w: %w", postEntity.ErrStorage, err)
	}

	s.commitMu.Lock()
	now := s.now()
	p := &postEntity.Post{
		ID:        uuid.Must(uuid.NewV4()),
		Title:     title,
		Content:   content,
		ImageURL:  imagePath,
		CreatorID: creator.ID,
		Creator:   *creator,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.PostRepository.Create(ctx, p); err != nil {
		s.commitMu.Unlock()
		config.Logger.Error("❌ Failed to create post", zap.String("userID", requesterID), zap.Error(err))
		s.discard(ctx, imagePath)
		return nil, fmt.Errorf("%w: %w", postEntity.ErrStorage, err)
	}
	dto := postPort.ToDTO(p)
	s.publish(postPort.CreatedEvent(dto))
	s.commitMu.Unlock()

	config.Logger.Info("✅ Created post", zap.String("postID", dto.ID), zap.String("userID", requesterID))
	return &postPort.CreateResult{
		Post:    dto,
		Creator: &postPort.CreatorDTO{ID: creator.ID.String(), Name: creator.Name},
	}, nil
}

// UpdatePost replaces title, content and, when newImagePath is set, the image.
// The previous image is discarded once the new one is committed.
func (s *PostService) UpdatePost(ctx context.Context, requesterID, postID, title, content, newImagePath string) (*postPort.PostDTO, error) {
	title, content = strings.TrimSpace(title), strings.TrimSpace(content)
	if title == "" || content == "" {
		s.discard(ctx, newImagePath)
		return nil, fmt.Errorf("%w: title and content are required", postEntity.ErrValidationFailed)
	}

	p, err := s.load(ctx, postID)
	if err != nil {
		s.discard(ctx, newImagePath)
		return nil, err
	}
	if !p.OwnedBy(requesterID) {
		s.discard(ctx, newImagePath)
		return nil, postEntity.ErrForbidden
	}

	oldImage := p.ImageURL
	image := newImagePath
	if image == "" {
		image = oldImage
	}
	if image == "" {
		return nil, fmt.Errorf("%w: no image picked", postEntity.ErrValidationFailed)
	}

	p.Title = title
	p.Content = content
	p.ImageURL = image
	p.UpdatedAt = s.now()

	s.commitMu.Lock()
	if err := s.PostRepository.Update(ctx, p); err != nil {
		s.commitMu.Unlock()
		if image != oldImage {
			s.discard(ctx, image)
		}
		if errors.Is(err, postEntity.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", postEntity.ErrStorage, err)
	}
	dto := postPort.ToDTO(p)
	s.publish(postPort.UpdatedEvent(dto))
	s.commitMu.Unlock()

	if image != oldImage {
		s.discard(ctx, oldImage)
	}
	return dto, nil
}

// DeletePost removes the post, its owner link and its image.
func (s *PostService) DeletePost(ctx context.Context, requesterID, postID string) error {
	p, err := s.load(ctx, postID)
	if err != nil {
		return err
	}
	if !p.OwnedBy(requesterID) {
		return postEntity.ErrForbidden
	}

	s.discard(ctx, p.ImageURL)

	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	if err := s.PostRepository.Delete(ctx, postID); err != nil {
		if errors.Is(err, postEntity.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: %w", postEntity.ErrStorage, err)
	}
	s.publish(postPort.DeletedEvent(p.ID.String()))
	return nil
}

// ListOwned returns the ids of the posts requesterID created.
func (s *PostService) ListOwned(ctx context.Context, requesterID string) ([]string, error) {
	if _, err := uuid.FromString(requesterID); err != nil {
		return nil, fmt.Errorf("%w: invalid user id %q", postEntity.ErrValidationFailed, requesterID)
	}
	ids, err := s.UserRepository.OwnedPostIDs(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", postEntity.ErrStorage, err)
	}
	return ids, nil
}

func (s *PostService) load(ctx context.Context, postID string) (*postEntity.Post, error) {
	if _, err := uuid.FromString(postID); err != nil {
		return nil, fmt.Errorf("%w: %s", postEntity.ErrNotFound, postID)
	}
	p, err := s.PostRepository.FindByID(ctx, postID)
	if errors.Is(err, postEntity.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", postEntity.ErrStorage, err)
	}
	return p, nil
}

// publish must be called with commitMu held.
func (s *PostService) publish(event postPort.FeedEvent) {
	s.Publisher.Publish(postPort.FeedTopic, event)
	metrics.FeedEventsPublished.WithLabelValues(string(event.Action)).Inc()
}

func (s *PostService) discard(ctx context.Context, path string) {
	if path == "" || s.Assets == nil {
		return
	}
	s.Assets.Discard(ctx, path)
}
