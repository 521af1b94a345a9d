package model

import (
	"time"

	authmodel "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/model"
	"github.com/google/uuid"
)

type Tag string

const (
	TagGeneral      Tag = "general"
	TagAnnouncement Tag = "announcement"
	TagQuestion     Tag = "question"
	TagIdea         Tag = "idea"
	TagFeedback     Tag = "feedback"
)

const (
	MaxContentLength = 240
	DefaultPageSize  = 20
	MaxPageSize      = 50
)

type Message struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey"`
	AuthorID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	Author    authmodel.User `gorm:"foreignKey:AuthorID"`
	Content   string         `gorm:"size:240;not null"`
	Tag       Tag            `gorm:"not null;index"`
	CreatedAt time.Time      `gorm:"index"`
	UpdatedAt time.Time
}

// Filter narrows a feed query. Zero values mean "no constraint".
type Filter struct {
	Tag      Tag
	AuthorID uuid.UUID
	From     time.Time
	To       time.Time
	Cursor   uuid.UUID
	Limit    int
}

type Page struct {
	Messages   []Message
	NextCursor *uuid.UUID
	HasMore    bool
}

type View struct {
	ID        string               `json:"_id"`
	Author    authmodel.PublicUser `json:"authorId"`
	Content   string               `json:"content"`
	Tag       Tag                  `json:"tag"`
	CreatedAt string               `json:"createdAt"`
	UpdatedAt string               `json:"updatedAt"`
}

func (m Message) View() View {
	return View{
		ID:        m.ID.String(),
		Author:    m.Author.Public(),
		Content:   m.Content,
		Tag:       m.Tag,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: m.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

type PageView struct {
	Messages   []View  `json:"messages"`
	NextCursor *string `json:"nextCursor"`
	HasMore    bool    `json:"hasMore"`
}

func (p Page) View() PageView {
	out := PageView{Messages: make([]View, 0, len(p.Messages)), HasMore: p.HasMore}
	for _, m := range p.Messages {
		out.Messages = append(out.Messages, m.View())
	}
	if p.NextCursor != nil {
		s := p.NextCursor.String()
		out.NextCursor = &s
	}
	return out
}
