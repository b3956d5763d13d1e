package service

import (
	"context"
	"math"
	"slices"
	"sort"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"docvault/internal/model"
	"docvault/internal/repository"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	minTermLength = 2
)

// SearchCriteria are the optional document filters, combined with AND.
// Tags match if a document has any of them; Metadata matches if a document has
// any entry whose key equals a map key and whose value contains the map value.
type SearchCriteria struct {
	Filename    string
	ContentType string
	OwnerID     string
	Tags        []string
	Metadata    map[string]string
}

// Pagination is a 1-indexed page request. A zero Limit means DefaultPageSize.
type Pagination struct {
	Page  int
	Limit int
}

// Sort names the column and direction; empty values mean created_at desc.
type Sort struct {
	Field string
	Order string
}

// SearchResult is one page of search results.
type SearchResult struct {
	Items      []model.Document `json:"data"`
	Total      int              `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"total_pages"`
}

// SearchService evaluates structured document queries.
type SearchService interface {
	// Search returns an empty page without touching storage when no criterion
	// is significant, or when a requested tag or metadata filter cannot match.
	Search(ctx context.Context, c SearchCriteria, p Pagination, s Sort) (*SearchResult, error)
}

type searchService struct {
	docs repository.DocumentRepository
}

// NewSearchService constructs a SearchService over the document index.
func NewSearchService(docs repository.DocumentRepository) SearchService {
	return &searchService{docs: docs}
}

// normalizedCriteria holds the trimmed terms that passed the length threshold.
type normalizedCriteria struct {
	filename      string
	contentType   string
	ownerID       model.UserID
	tags          []string
	metadata      []repository.MetadataFilter
	tagsRequested bool
	metaRequested bool
}

func (n *normalizedCriteria) significant() bool {
	return n.filename != "" || n.contentType != "" || len(n.tags) > 0 || len(n.metadata) > 0
}

func significantTerm(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, utf8.RuneCountInString(s) >= minTermLength
}

func normalizeCriteria(c SearchCriteria) (*normalizedCriteria, error) {
	n := &normalizedCriteria{
		contentType:   strings.TrimSpace(c.ContentType),
		tagsRequested: len(c.Tags) > 0,
		metaRequested: len(c.Metadata) > 0,
	}
	if owner := strings.TrimSpace(c.OwnerID); owner != "" {
		id, err := model.ParseUserID(owner)
		if err != nil {
			return nil, invalidInput("owner_id: %v", err)
		}
		n.ownerID = id
	}
	if f, ok := significantTerm(c.Filename); ok {
		n.filename = f
	}
	for _, t := range c.Tags {
		if t, ok := significantTerm(t); ok && !slices.Contains(n.tags, t) {
			n.tags = append(n.tags, t)
		}
	}
	keys := make([]string, 0, len(c.Metadata))
	for k := range c.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		key := strings.TrimSpace(k)
		if key == "" {
			continue
		}
		if v, ok := significantTerm(c.Metadata[k]); ok {
			n.metadata = append(n.metadata, repository.MetadataFilter{Key: key, Value: v})
		}
	}
	return n, nil
}

func normalizePagination(p Pagination) (Pagination, error) {
	switch {
	case p.Limit == 0:
		p.Limit = DefaultPageSize
	case p.Limit < 0:
		return p, invalidInput("limit must be >= 1")
	case p.Limit > MaxPageSize:
		p.Limit = MaxPageSize
	}
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Page < 1 {
		return p, invalidInput("page must be >= 1")
	}
	// offset is (Page-1)*Limit
	if p.Page > math.MaxInt/p.Limit {
		return p, invalidInput("page out of range")
	}
	return p, nil
}

func normalizeSort(s Sort) (repository.SortField, repository.SortOrder, error) {
	field := repository.SortByCreatedAt
	switch f := repository.SortField(strings.ToLower(strings.TrimSpace(s.Field))); f {
	case "":
	case repository.SortByFilename, repository.SortBySize, repository.SortByCreatedAt:
		field = f
	default:
		return "", "", invalidInput("unsupported sort field %q", s.Field)
	}
	order := repository.SortDesc
	switch o := repository.SortOrder(strings.ToLower(strings.TrimSpace(s.Order))); o {
	case "":
	case repository.SortAsc, repository.SortDesc:
		order = o
	default:
		return "", "", invalidInput("unsupported sort order %q", s.Order)
	}
	return field, order, nil
}

func emptyPage(p Pagination) *SearchResult {
	return &SearchResult{Items: []model.Document{}, Page: p.Page, Limit: p.Limit}
}

func (s *searchService) Search(ctx context.Context, c SearchCriteria, p Pagination, srt Sort) (_ *SearchResult, err error) {
	ctx, span := tracer.Start(ctx, "SearchService.Search")
	defer func() { endSpan(span, err) }()

	p, err = normalizePagination(p)
	if err != nil {
		return nil, err
	}
	field, order, err := normalizeSort(srt)
	if err != nil {
		return nil, err
	}
	n, err := normalizeCriteria(c)
	if err != nil {
		return nil, err
	}

	if !n.significant() {
		span.SetAttributes(attribute.Bool("search.short_circuit", true))
		return emptyPage(p), nil
	}
	if (n.tagsRequested && len(n.tags) == 0) || (n.metaRequested && len(n.metadata) == 0) {
		span.SetAttributes(attribute.Bool("search.short_circuit", true))
		return emptyPage(p), nil
	}

	ids, empty, err := s.restrictIDs(ctx, n)
	if err != nil {
		return nil, err
	}
	if empty {
		span.SetAttributes(attribute.Bool("search.short_circuit", true))
		return emptyPage(p), nil
	}

	res, err := s.docs.Search(ctx, repository.SearchQuery{
		Filename:    n.filename,
		ContentType: n.contentType,
		OwnerID:     n.ownerID,
		IDs:         ids,
		SortBy:      field,
		Order:       order,
		PageQuery:   repository.PageQuery{Limit: p.Limit, Offset: (p.Page - 1) * p.Limit},
	})
	if err != nil {
		return nil, storageFailure("search documents", err)
	}

	span.SetAttributes(attribute.Int("search.total", res.Total))
	return &SearchResult{
		Items:      res.Items,
		Total:      res.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: (res.Total + p.Limit - 1) / p.Limit,
	}, nil
}

// restrictIDs resolves the tag and metadata sub-filters into one ID set.
// A nil set means no restriction; empty reports that nothing can match.
func (s *searchService) restrictIDs(ctx context.Context, n *normalizedCriteria) (ids []model.DocumentID, empty bool, err error) {
	if len(n.tags) > 0 {
		byTag, err := s.docs.IDsByTags(ctx, n.tags)
		if err != nil {
			return nil, false, storageFailure("match tags", err)
		}
		if len(byTag) == 0 {
			return nil, true, nil
		}
		ids = byTag
	}
	if len(n.metadata) > 0 {
		byMeta, err := s.docs.IDsByMetadata(ctx, n.metadata)
		if err != nil {
			return nil, false, storageFailure("match metadata", err)
		}
		if ids == nil {
			ids = byMeta
		} else {
			ids = intersect(ids, byMeta)
		}
		if len(ids) == 0 {
			return nil, true, nil
		}
	}
	return ids, false, nil
}

func intersect(a, b []model.DocumentID) []model.DocumentID {
	set := make(map[model.DocumentID]struct{}, len(b))
	for _, id := range b {
		set[id] = struct{}{}
	}
	out := make([]model.DocumentID, 0)
	for _, id := range a {
		if _, ok := set[id]; ok {
			out = append(out, id)
			delete(set, id)
		}
	}
	return out
}
