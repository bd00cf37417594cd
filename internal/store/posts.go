package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// Minimal post operations. The community feed proper lives outside the auth
// core; these exist so the deletion cascade has real data to act on.

func (s *Store) CreatePost(ctx context.Context, authorID, content string) (*Post, error) {
	post := &Post{
		Content:  content,
		AuthorID: authorID,
		LikedBy:  StringSlice{},
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// LikePost adds likerID to the post's like-set, once.
func (s *Store) LikePost(ctx context.Context, postID uint, likerID string) error {
	var post Post
	err := s.db.WithContext(ctx).First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	for _, id := range post.LikedBy {
		if id == likerID {
			return nil
		}
	}
	post.LikedBy = append(post.LikedBy, likerID)
	post.Likes = len(post.LikedBy)
	return s.db.WithContext(ctx).Model(&post).Updates(map[string]any{
		"liked_by": post.LikedBy,
		"likes":    post.Likes,
	}).Error
}

func (s *Store) PostsByAuthor(ctx context.Context, authorID string) ([]Post, error) {
	var posts []Post
	err := s.db.WithContext(ctx).Where("author_id = ?", authorID).Find(&posts).Error
	return posts, err
}

func (s *Store) AllPosts(ctx context.Context) ([]Post, error) {
	var posts []Post
	err := s.db.WithContext(ctx).Find(&posts).Error
	return posts, err
}
