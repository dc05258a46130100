package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mpmf/NexxtTask/internal/model"
	"github.com/mpmf/NexxtTask/internal/store"
)

// maxConcurrentTagLookups bounds ResolveTags fan-out.
const maxConcurrentTagLookups = 4

type tagServiceImpl struct {
	logger zerolog.Logger
	store  store.Store
}

func NewTagService(
	logger zerolog.Logger,
	store store.Store,
) TagService {
	return &tagServiceImpl{
		logger: logger,
		store:  store,
	}
}

func (s *tagServiceImpl) CreateTag(ctx context.Context, input model.CreateTagInput) (*model.Tag, error) {
	if _, err := ActorFrom(ctx); err != nil {
		return nil, err
	}

	tag := model.Tag{
		Name:  strings.TrimSpace(input.Name),
		Color: strings.TrimSpace(input.Color),
	}
	if tag.Name == "" {
		return nil, invalidInput("tag name is required")
	}

	if err := s.store.CreateTag(ctx, &tag); err != nil {
		if errors.Is(err, store.ErrConflict) {
			err = fmt.Errorf("%w: a tag with this name already exists", ErrConflict)
		}
		s.logger.Error().
			Err(err).
			Str("name", tag.Name).
			Msg("failed to create tag")
		return nil, err
	}

	s.logger.Info().
		Str("tag_id", tag.ID).
		Str("name", tag.Name).
		Msg("created tag")
	return &tag, nil
}

func (s *tagServiceImpl) GetTags(ctx context.Context) ([]model.Tag, error) {
	if _, err := ActorFrom(ctx); err != nil {
		return nil, err
	}

	tags, err := s.store.GetTags(ctx)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tags")
		return nil, err
	}
	s.logger.Debug().
		Int("count", len(tags)).
		Msg("selected tags")
	return tags, nil
}

func (s *tagServiceImpl) GetOrCreateTag(ctx context.Context, name, color string) (*model.Tag, error) {
	if _, err := ActorFrom(ctx); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidInput("tag name is required")
	}

	tag, err := s.store.GetTagByName(ctx, name)
	if err == nil {
		return tag, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		s.logger.Error().
			Err(err).
			Str("name", name).
			Msg("failed to select tag by name")
		return nil, err
	}

	return s.CreateTag(ctx, model.CreateTagInput{Name: name, Color: color})
}

func (s *tagServiceImpl) ResolveTags(ctx context.Context, names []string) ([]model.Tag, error) {
	if _, err := ActorFrom(ctx); err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(names))
	unique := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		unique = append(unique, name)
	}

	tags := make([]model.Tag, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTagLookups)
	for i, name := range unique {
		g.Go(func() error {
			tag, err := s.GetOrCreateTag(gctx, name, "")
			if err != nil {
				return fmt.Errorf("resolving tag %q: %w", name, err)
			}
			tags[i] = *tag
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("count", len(tags)).
		Msg("resolved tags")
	return tags, nil
}
