package service

import (
	"context"
	"strings"
	"time"

	"github.com/Miraines/MoonyAndStarry/board-service/internal/adapters/transport/http/dto"
	customErrors "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/message/model"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/message/repo"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	Create(ctx context.Context, authorID string, in dto.CreateMessageDTO) (model.View, error)
	Get(ctx context.Context, id string) (model.View, error)
	List(ctx context.Context, q dto.ListMessagesQuery) (model.PageView, error)
	Update(ctx context.Context, id, userID string, in dto.UpdateMessageDTO) (model.View, error)
	Delete(ctx context.Context, id, userID string) error
}

type messageService struct {
	repo repo.MessageRepo
	v    *validator.Validate
	log  *zap.Logger
}

func New(r repo.MessageRepo, v *validator.Validate, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &messageService{repo: r, v: v, log: log}
}

func (s *messageService) Create(ctx context.Context, authorID string, in dto.CreateMessageDTO) (model.View, error) {
	in.Content = strings.TrimSpace(in.Content)
	if err := s.v.Struct(in); err != nil {
		return model.View{}, customErrors.NewInvalidArgument(err.Error())
	}
	author, err := uuid.Parse(authorID)
	if err != nil {
		return model.View{}, customErrors.Unauthorized("user not found")
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.View{}, customErrors.WrapInternal(err, "Create")
	}
	tag := model.Tag(in.Tag)
	if tag == "" {
		tag = model.TagGeneral
	}

	m, err := s.repo.CreateMessage(ctx, model.Message{
		ID:       id,
		AuthorID: author,
		Content:  in.Content,
		Tag:      tag,
	})
	if err != nil {
		return model.View{}, err
	}
	s.log.Debug("message created", zap.String("message_id", id.String()), zap.String("author_id", authorID))
	return m.View(), nil
}

func (s *messageService) Get(ctx context.Context, id string) (model.View, error) {
	mid, err := parseID(id)
	if err != nil {
		return model.View{}, err
	}
	m, err := s.repo.GetMessage(ctx, mid)
	if err != nil {
		return model.View{}, err
	}
	return m.View(), nil
}

func (s *messageService) List(ctx context.Context, q dto.ListMessagesQuery) (model.PageView, error) {
	if err := s.v.Struct(q); err != nil {
		return model.PageView{}, customErrors.NewInvalidArgument(err.Error())
	}

	f := model.Filter{Tag: model.Tag(q.Tag), Limit: q.Limit}
	if f.Limit == 0 {
		f.Limit = model.DefaultPageSize
	}
	if q.AuthorID != "" {
		f.AuthorID = uuid.MustParse(q.AuthorID)
	}
	if q.Cursor != "" {
		f.Cursor = uuid.MustParse(q.Cursor)
	}

	var err error
	if f.From, err = parseDate(q.FromDate, "fromDate"); err != nil {
		return model.PageView{}, err
	}
	if f.To, err = parseDate(q.ToDate, "toDate"); err != nil {
		return model.PageView{}, err
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return model.PageView{}, customErrors.NewInvalidArgument("fromDate must not be after toDate")
	}

	page, err := s.repo.ListMessages(ctx, f)
	if err != nil {
		return model.PageView{}, err
	}
	return page.View(), nil
}

func (s *messageService) Update(ctx context.Context, id, userID string, in dto.UpdateMessageDTO) (model.View, error) {
	if in.Content != nil {
		trimmed := strings.TrimSpace(*in.Content)
		in.Content = &trimmed
	}
	if err := s.v.Struct(in); err != nil {
		return model.View{}, customErrors.NewInvalidArgument(err.Error())
	}
	if in.Content == nil && in.Tag == nil {
		return model.View{}, customErrors.NewInvalidArgument("nothing to update")
	}

	m, err := s.owned(ctx, id, userID, "you can only edit your own messages")
	if err != nil {
		return model.View{}, err
	}

	fields := map[string]any{}
	if in.Content != nil {
		fields["content"] = *in.Content
	}
	if in.Tag != nil {
		fields["tag"] = model.Tag(*in.Tag)
	}
	updated, err := s.repo.UpdateMessage(ctx, m.ID, fields)
	if err != nil {
		return model.View{}, err
	}
	return updated.View(), nil
}

func (s *messageService) Delete(ctx context.Context, id, userID string) error {
	m, err := s.owned(ctx, id, userID, "you can only delete your own messages")
	if err != nil {
		return err
	}
	return s.repo.DeleteMessage(ctx, m.ID)
}

// owned loads the message and checks that userID wrote it.
func (s *messageService) owned(ctx context.Context, id, userID, denied string) (model.Message, error) {
	mid, err := parseID(id)
	if err != nil {
		return model.Message{}, err
	}
	m, err := s.repo.GetMessage(ctx, mid)
	if err != nil {
		return model.Message{}, err
	}
	if m.AuthorID.String() != userID {
		s.log.Debug("rejected mutation by non-author", zap.String("message_id", id), zap.String("user_id", userID))
		return model.Message{}, customErrors.Forbidden(denied)
	}
	return m, nil
}

func parseID(id string) (uuid.UUID, error) {
	mid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, customErrors.NewInvalidArgument("invalid message id")
	}
	return mid, nil
}

// parseDate accepts RFC 3339 timestamps and plain calendar dates.
func parseDate(raw, field string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Time{}, customErrors.NewInvalidArgument(field + " must be an ISO 8601 date")
}
