package post

import (
	"context"
	"time"

	"postfeed/internal/core/post"
)

// FeedTopic is the broadcast topic every feed change is published on.
const FeedTopic = "posts"

// PostRepository is the persistence port for posts. Create and Delete keep the
// owner's post list in step with the post row.
type PostRepository interface {
	Create(ctx context.Context, p *post.Post) error
	FindByID(ctx context.Context, id string) (*post.Post, error)
	FindPage(ctx context.Context, offset, limit int) ([]*post.Post, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, p *post.Post) error
	Delete(ctx context.Context, id string) error
}

// EventPublisher hands feed events to whoever is listening.
type EventPublisher interface {
	Publish(topic string, event any)
}

// DTOs for the use cases. JSON names follow the feed client's wire format.
type CreatorDTO struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type PostDTO struct {
	ID        string      `json:"_id"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	ImageURL  string      `json:"imageUrl"`
	Creator   *CreatorDTO `json:"creator"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

type FeedPage struct {
	Posts      []*PostDTO `json:"posts"`
	TotalItems int64      `json:"totalItems"`
}

type CreateResult struct {
	Post    *PostDTO    `json:"post"`
	Creator *CreatorDTO `json:"creator"`
}

// ToDTO projects a post, reducing its creator to id and name.
func ToDTO(p *post.Post) *PostDTO {
	dto := &PostDTO{
		ID:        p.ID.String(),
		Title:     p.Title,
		Content:   p.Content,
		ImageURL:  p.ImageURL,
		Creator:   &CreatorDTO{ID: p.CreatorID.String()},
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.Creator.ID == p.CreatorID {
		dto.Creator.Name = p.Creator.Name
	}
	return dto
}
