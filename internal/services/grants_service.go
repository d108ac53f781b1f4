package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/msseason/ai-grant-finder/internal/models"
)

const grantCatalogTTL = 1 * time.Hour

// CatalogCache is the slice of the cache holding the external grant
// datasets.
type CatalogCache interface {
	GetGrantCatalog(ctx context.Context) ([]models.Grant, error)
	SetGrantCatalog(ctx context.Context, grants []models.Grant, ttl time.Duration) error
	GetGrantorAnalysis(ctx context.Context) (map[string]models.GrantorAnalysis, error)
	SetGrantorAnalysis(ctx context.Context, analysis map[string]models.GrantorAnalysis, ttl time.Duration) error
}

// GrantsService serves the read-only grants catalog and grantor-analysis
// datasets. Both are supplementary: a failed fetch degrades to an empty
// result and is logged, never surfaced as a hard failure.
type GrantsService interface {
	ListGrants(ctx context.Context) ([]models.Grant, error)
	GetGrant(ctx context.Context, id string) (*models.Grant, error)
	Search(ctx context.Context, query string) ([]models.Grant, error)
	GetAnalysis(ctx context.Context, id string) (*models.GrantorAnalysis, error)
	RefreshCatalog(ctx context.Context) error
}

type grantsService struct {
	client      *http.Client
	catalogURL  string
	analysisURL string
	cache       CatalogCache
}

func NewGrantsService(client *http.Client, catalogURL, analysisURL string, cache CatalogCache) GrantsService {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &grantsService{
		client:      client,
		catalogURL:  catalogURL,
		analysisURL: analysisURL,
		cache:       cache,
	}
}

// ListGrants returns the flattened catalog, from cache when warm. Errors
// from the upstream fetch degrade to an empty list.
func (s *grantsService) ListGrants(ctx context.Context) ([]models.Grant, error) {
	if s.cache != nil {
		if grants, err := s.cache.GetGrantCatalog(ctx); err == nil && grants != nil {
			return grants, nil
		}
	}

	grants := s.fetchCatalog(ctx)
	if s.cache != nil && len(grants) > 0 {
		if err := s.cache.SetGrantCatalog(ctx, grants, grantCatalogTTL); err != nil {
			log.Printf("Failed to cache grant catalog: %v", err)
		}
	}
	return grants, nil
}

func (s *grantsService) GetGrant(ctx context.Context, id string) (*models.Grant, error) {
	grants, err := s.ListGrants(ctx)
	if err != nil {
		return nil, err
	}
	for i := range grants {
		if grants[i].ID == id {
			return &grants[i], nil
		}
	}
	return nil, nil
}

// Search matches query case-insensitively against grant name, provider and
// category tags.
func (s *grantsService) Search(ctx context.Context, query string) ([]models.Grant, error) {
	grants, err := s.ListGrants(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(query)
	var matches []models.Grant
	for _, grant := range grants {
		if grantMatches(grant, q) {
			matches = append(matches, grant)
		}
	}
	return matches, nil
}

func grantMatches(grant models.Grant, q string) bool {
	if strings.Contains(strings.ToLower(grant.Name), q) || strings.Contains(strings.ToLower(grant.Provider), q) {
		return true
	}
	for _, cat := range grant.Category {
		if strings.Contains(strings.ToLower(cat), q) {
			return true
		}
	}
	return false
}

func (s *grantsService) GetAnalysis(ctx context.Context, id string) (*models.GrantorAnalysis, error) {
	var analysis map[string]models.GrantorAnalysis
	if s.cache != nil {
		if cached, err := s.cache.GetGrantorAnalysis(ctx); err == nil && cached != nil {
			analysis = cached
		}
	}

	if analysis == nil {
		analysis = s.fetchAnalysis(ctx)
		if s.cache != nil && len(analysis) > 0 {
			if err := s.cache.SetGrantorAnalysis(ctx, analysis, grantCatalogTTL); err != nil {
				log.Printf("Failed to cache grantor analysis: %v", err)
			}
		}
	}

	record, ok := analysis[id]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

// RefreshCatalog re-fetches both datasets and rewrites the cache. Run by the
// background scheduler.
func (s *grantsService) RefreshCatalog(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	if grants := s.fetchCatalog(ctx); len(grants) > 0 {
		if err := s.cache.SetGrantCatalog(ctx, grants, grantCatalogTTL); err != nil {
			return fmt.Errorf("failed to cache grant catalog: %w", err)
		}
	}
	if analysis := s.fetchAnalysis(ctx); len(analysis) > 0 {
		if err := s.cache.SetGrantorAnalysis(ctx, analysis, grantCatalogTTL); err != nil {
			return fmt.Errorf("failed to cache grantor analysis: %w", err)
		}
	}
	return nil
}

// fetchCatalog loads the category -> grants mapping and flattens it in
// stable category order.
func (s *grantsService) fetchCatalog(ctx context.Context) []models.Grant {
	if s.catalogURL == "" {
		return nil
	}

	var byCategory map[string][]models.Grant
	if err := s.fetchJSON(ctx, s.catalogURL, &byCategory); err != nil {
		log.Printf("Error loading grants catalog: %v", err)
		return nil
	}

	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var grants []models.Grant
	for _, category := range categories {
		grants = append(grants, byCategory[category]...)
	}
	return grants
}

func (s *grantsService) fetchAnalysis(ctx context.Context) map[string]models.GrantorAnalysis {
	if s.analysisURL == "" {
		return nil
	}

	var analysis map[string]models.GrantorAnalysis
	if err := s.fetchJSON(ctx, s.analysisURL, &analysis); err != nil {
		log.Printf("Error loading grantor analysis: %v", err)
		return nil
	}
	return analysis
}

func (s *grantsService) fetchJSON(ctx context.Context, url string, dest any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}
