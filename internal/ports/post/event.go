package post

import (
	"github.com/goccy/go-json"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// FeedEvent describes one committed mutation. Create and update carry the post,
// delete carries only the post id.
type FeedEvent struct {
	Action Action
	Post   *PostDTO
	PostID string
}

// CreatedEvent announces a new post.
func CreatedEvent(p *PostDTO) FeedEvent {
	return FeedEvent{Action: ActionCreate, Post: p, PostID: p.ID}
}

// UpdatedEvent carries the post as it was committed.
func UpdatedEvent(p *PostDTO) FeedEvent {
	return FeedEvent{Action: ActionUpdate, Post: p, PostID: p.ID}
}

// DeletedEvent names the removed post by id.
func DeletedEvent(id string) FeedEvent {
	return FeedEvent{Action: ActionDelete, PostID: id}
}

// MarshalJSON writes {"action": ..., "post": <post object or id>}.
func (e FeedEvent) MarshalJSON() ([]byte, error) {
	if e.Action == ActionDelete || e.Post == nil {
		return json.Marshal(struct {
			Action Action `json:"action"`
			Post   string `json:"post"`
		}{e.Action, e.PostID})
	}
	return json.Marshal(struct {
		Action Action   `json:"action"`
		Post   *PostDTO `json:"post"`
	}{e.Action, e.Post})
}
