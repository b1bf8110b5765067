package database

import (
	"context"
	"errors"

	"postfeed/internal/core/post"
	"postfeed/internal/core/user"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepositoryDatabase implements PostRepository on gorm.
type PostRepositoryDatabase struct {
	db *gorm.DB
}

func NewPostRepositoryDatabase(db *gorm.DB) *PostRepositoryDatabase {
	return &PostRepositoryDatabase{db: db}
}

// Create inserts the post and its owner link in one transaction.
func (repo *PostRepositoryDatabase) Create(ctx context.Context, p *post.Post) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(p).Error; err != nil {
			return err
		}
		return tx.Create(&user.UserPost{UserID: p.CreatorID, PostID: p.ID}).Error
	})
}

func (repo *PostRepositoryDatabase) FindByID(ctx context.Context, id string) (*post.Post, error) {
	var p post.Post
	err := repo.db.WithContext(ctx).Preload("Creator").Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, post.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindPage returns posts newest first.
func (repo *PostRepositoryDatabase) FindPage(ctx context.Context, offset, limit int) ([]*post.Post, error) {
	var posts []*post.Post
	err := repo.db.WithContext(ctx).
		Preload("Creator").
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (repo *PostRepositoryDatabase) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := repo.db.WithContext(ctx).Model(&post.Post{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Update writes the editable fields. The creator never changes.
func (repo *PostRepositoryDatabase) Update(ctx context.Context, p *post.Post) error {
	res := repo.db.WithContext(ctx).Model(&post.Post{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"title":      p.Title,
			"content":    p.Content,
			"image_url":  p.ImageURL,
			"updated_at": p.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return post.ErrNotFound
	}
	return nil
}

// Delete removes the post and its owner link in one transaction.
func (repo *PostRepositoryDatabase) Delete(ctx context.Context, id string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&post.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return post.ErrNotFound
		}
		return tx.Where("post_id = ?", id).Delete(&user.UserPost{}).Error
	})
}
