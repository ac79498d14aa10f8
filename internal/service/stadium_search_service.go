package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/minwonhaeso/esc-server/internal/domain"
	"github.com/minwonhaeso/esc-server/internal/observability"
	"github.com/minwonhaeso/esc-server/internal/repository"
)

type StadiumSearchView struct {
	StadiumID uint    `json:"stadiumId"`
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	ImgURL    string  `json:"imgUrl"`
	StarAvg   float64 `json:"starAvg"`
}

type StadiumSearchService struct {
	docs     repository.StadiumDocumentRepository
	cache    SearchCacheStore
	cacheTTL time.Duration
	group    singleflight.Group
	logger   *slog.Logger
}

func NewStadiumSearchService(docs repository.StadiumDocumentRepository, cache SearchCacheStore, cacheTTL time.Duration, logger *slog.Logger) *StadiumSearchService {
	if cache == nil {
		cache = NewNoopSearchCacheStore()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StadiumSearchService{docs: docs, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func (s *StadiumSearchService) Save(ctx context.Context, doc *domain.StadiumDocument) error {
	if err := s.docs.Upsert(ctx, doc); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *StadiumSearchService) Delete(ctx context.Context, stadiumID uint) error {
	if err := s.docs.Delete(ctx, stadiumID); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// IndexStadium projects a stadium row into its search document.
func (s *StadiumSearchService) IndexStadium(ctx context.Context, stadium domain.Stadium) error {
	return s.Save(ctx, &domain.StadiumDocument{
		StadiumID: stadium.ID,
		Name:      stadium.Name,
		Address:   stadium.Address,
		MainImg:   stadium.MainImg,
		StarAvg:   stadium.StarAvg,
	})
}

// Search matches any whitespace-separated token against name or address.
// Cache failures fall through to the index.
func (s *StadiumSearchService) Search(ctx context.Context, searchValue string, req repository.PageRequest) (repository.PageResult[StadiumSearchView], error) {
	req = req.Normalize()
	tokens := searchTokens(searchValue)
	if len(tokens) == 0 {
		return emptySearchPage(req), nil
	}
	key := searchCacheKey(tokens, req)

	// The generation is read before the index so a concurrent write always
	// strands this fill instead of publishing it.
	generation, err := s.cache.Generation(ctx)
	cacheable := err == nil
	if err != nil {
		observability.RecordSearchCacheEvent(ctx, "error")
		s.logger.WarnContext(ctx, "stadium search cache generation read failed", "error", err)
	} else if payload, ok, err := s.cache.Get(ctx, generation, key); err != nil {
		observability.RecordSearchCacheEvent(ctx, "error")
		s.logger.WarnContext(ctx, "stadium search cache read failed", "error", err)
	} else if ok {
		var cached repository.PageResult[StadiumSearchView]
		if err := json.Unmarshal(payload, &cached); err == nil {
			observability.RecordSearchCacheEvent(ctx, "hit")
			return cached, nil
		}
	}
	observability.RecordSearchCacheEvent(ctx, "miss")

	flightKey := fmt.Sprintf("g=%d|%s|cacheable=%t", generation, key, cacheable)
	v, err, shared := s.group.Do(flightKey, func() (any, error) {
		page, err := s.docs.Search(ctx, tokens, req)
		if err != nil {
			return nil, err
		}
		out := toSearchPage(page)
		if !cacheable {
			return out, nil
		}
		if payload, err := json.Marshal(out); err == nil {
			if err := s.cache.Set(ctx, generation, key, payload, s.cacheTTL); err != nil {
				s.logger.WarnContext(ctx, "stadium search cache write failed", "error", err)
			}
		}
		return out, nil
	})
	if err != nil {
		return repository.PageResult[StadiumSearchView]{}, fmt.Errorf("search stadiums: %w", err)
	}
	if shared {
		observability.RecordSearchCacheEvent(ctx, "shared")
	}
	return v.(repository.PageResult[StadiumSearchView]), nil
}

func (s *StadiumSearchService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "stadium search cache invalidation failed", "error", err)
		return
	}
	observability.RecordSearchCacheEvent(ctx, "invalidate")
}

func searchTokens(v string) []string {
	fields := strings.Fields(strings.ToLower(v))
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}

func searchCacheKey(tokens []string, req repository.PageRequest) string {
	return fmt.Sprintf("q=%s|page=%d|size=%d", strings.Join(tokens, " "), req.Page, req.PageSize)
}

func emptySearchPage(req repository.PageRequest) repository.PageResult[StadiumSearchView] {
	return repository.NewPageResult[StadiumSearchView](nil, req, 0)
}

func toSearchPage(page repository.PageResult[domain.StadiumDocument]) repository.PageResult[StadiumSearchView] {
	out := repository.PageResult[StadiumSearchView]{
		Items:      make([]StadiumSearchView, 0, len(page.Items)),
		Page:       page.Page,
		PageSize:   page.PageSize,
		Total:      page.Total,
		TotalPages: page.TotalPages,
	}
	for _, d := range page.Items {
		out.Items = append(out.Items, StadiumSearchView{
			StadiumID: d.StadiumID,
			Name:      d.Name,
			Address:   d.Address,
			ImgURL:    d.MainImg,
			StarAvg:   d.StarAvg,
		})
	}
	return out
}
