package api

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/session"
)

type Announcement struct {
	ID             int          `json:"id"`
	Title          string       `json:"title"`
	Content        string       `json:"content"`
	Author         session.User `json:"author"`
	Priority       string       `json:"priority"` // low|medium|high|urgent
	TargetAudience string       `json:"target_audience"`
	Course         *Course      `json:"course"`
	IsPinned       bool         `json:"is_pinned"`
	CreatedAt      time.Time    `json:"created_at"`
}

type NewAnnouncement struct {
	Title          string   `json:"title" validate:"required"`
	Content        string   `json:"content" validate:"required"`
	Priority       string   `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	TargetAudience string   `json:"target_audience" validate:"omitempty,oneof=all students teachers admin"`
	CourseID       null.Int `json:"course_id,omitempty"`
	IsPinned       bool     `json:"is_pinned"`
}

func (in *NewAnnouncement) Validate() error {
	in.Title = core.CleanString(in.Title)
	in.Content = core.CleanString(in.Content)
	if in.Priority == "" {
		in.Priority = "medium"
	}
	if in.TargetAudience == "" {
		in.TargetAudience = "all"
	}
	return core.Validate.Struct(in)
}

func (c *Client) Announcements(ctx context.Context) ([]Announcement, error) {
	var announcements []Announcement
	err := c.getList(ctx, "/announcements/", &announcements)
	return announcements, err
}

func (c *Client) CreateAnnouncement(ctx context.Context, in NewAnnouncement) (Announcement, error) {
	var created Announcement
	if err := in.Validate(); err != nil {
		return created, err
	}
	err := c.post(ctx, "/announcements/", in, &created)
	return created, err
}
