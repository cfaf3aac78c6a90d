package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/regkeeper/internal/common"
	"github.com/dmitrijs2005/regkeeper/internal/logging"
	"github.com/dmitrijs2005/regkeeper/internal/models"
	"github.com/dmitrijs2005/regkeeper/internal/repositories/brands"
)

type BrandService interface {
	// Page lists brands, or searches them when term is not blank.
	Page(ctx context.Context, term string, page, pageSize int) models.BrandPage
	Count(ctx context.Context) int
	NewPager(term string, pageSize int) *Pager
}

type brandService struct {
	repo     brands.Repository
	pageSize int
	log      logging.Logger
}

func NewBrandService(repo brands.Repository, pageSize int, log logging.Logger) BrandService {
	if log == nil {
		log = logging.Nop()
	}
	if pageSize <= 0 {
		pageSize = brands.DefaultPageSize
	}
	return &brandService{repo: repo, pageSize: pageSize, log: log}
}

func (s *brandService) Page(ctx context.Context, term string, page, pageSize int) models.BrandPage {
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	if strings.TrimSpace(term) == "" {
		return s.repo.ListPage(ctx, page, pageSize)
	}
	return s.repo.Search(ctx, strings.TrimSpace(term), page, pageSize)
}

func (s *brandService) Count(ctx context.Context) int {
	return s.repo.Count(ctx)
}

func (s *brandService) NewPager(term string, pageSize int) *Pager {
	if pageSize <= 0 {
		pageSize = s.pageSize
	}
	return &Pager{svc: s, term: term, size: pageSize}
}

// Pager accumulates brand pages one "load more" at a time. A second LoadMore
// issued while one is in flight fails with common.ErrBusy.
type Pager struct {
	svc  BrandService
	term string
	size int

	busy atomic.Bool

	mu      sync.Mutex
	loaded  []models.BrandRecord
	last    int
	total   int
	pages   int
	started bool
}

// LoadMore fetches the next page and returns its records. It returns no
// records once the last page was loaded.
func (p *Pager) LoadMore(ctx context.Context) ([]models.BrandRecord, error) {
	if !p.busy.CompareAndSwap(false, true) {
		return nil, common.ErrBusy
	}
	defer p.busy.Store(false)

	p.mu.Lock()
	if p.started && p.last >= p.pages {
		p.mu.Unlock()
		return nil, nil
	}
	next := p.last + 1
	p.mu.Unlock()

	page := p.svc.Page(ctx, p.term, next, p.size)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.started = true
	p.last = next
	p.total = page.TotalCount
	p.pages = page.TotalPages
	p.loaded = append(p.loaded, page.Records...)
	return page.Records, nil
}

// Done reports whether every page has been loaded.
func (p *Pager) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.started && p.last >= p.pages
}

// Records returns everything loaded so far.
func (p *Pager) Records() []models.BrandRecord {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.BrandRecord, len(p.loaded))
	copy(out, p.loaded)
	return out
}

func (p *Pager) TotalCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// Reset forgets the loaded pages.
func (p *Pager) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loaded, p.last, p.total, p.pages, p.started = nil, 0, 0, 0, false
}
