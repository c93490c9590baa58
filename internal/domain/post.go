package domain

import (
	"errors"
	"strings"
	"time"
)

// DefaultPostAuthor is the display name used when a post is submitted without one.
const DefaultPostAuthor = "anonymous"

var (
	// ErrPostNotFound is returned when looking up, updating or deleting an unknown post.
	ErrPostNotFound = errors.New("post not found")
	// ErrNotPostOwner is returned when ownership enforcement is enabled and the
	// current user does not own the post.
	ErrNotPostOwner = errors.New("not the post owner")
	// ErrEmptyPostTitle is returned when a post is submitted without a title.
	ErrEmptyPostTitle = errors.New("title is required")
	// ErrEmptyPostContent is returned when a post is submitted without content.
	ErrEmptyPostContent = errors.New("content is required")
)

// Post is a persisted blog entry owned by exactly one user.
type Post struct {
	ID        int64
	Title     string
	Content   string
	Author    string
	CreatedAt time.Time
	UserID    int64
}

// PostDraft carries the user-editable fields of a post.
type PostDraft struct {
	Title   string
	Content string
	Author  string
}

// Normalize trims the draft and applies the default author.
func (d PostDraft) Normalize() PostDraft {
	d.Title = strings.TrimSpace(d.Title)
	d.Author = strings.TrimSpace(d.Author)

	if d.Author == "" {
		d.Author = DefaultPostAuthor
	}

	return d
}

// Validate reports the first missing required field.
func (d PostDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrEmptyPostTitle
	}

	if strings.TrimSpace(d.Content) == "" {
		return ErrEmptyPostContent
	}

	return nil
}
