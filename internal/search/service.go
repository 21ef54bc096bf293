package search

import (
	"context"

	"go.uber.org/zap"
)

// Service is the facade that tries Meilisearch first and falls back to PG FTS.
type Service struct {
	meili  *Meili
	pgfts  Searcher
	loader recordLoader
	logger *zap.Logger
}

type recordLoader interface {
	LoadAllRecords(ctx context.Context) ([]ContractRecord, error)
}

// NewService creates a search service. meili may be nil if Meilisearch is not
// configured; pgfts may be nil when there is no database.
func NewService(meili *Meili, pgfts *PgFTS, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{meili: meili, logger: logger}
	if pgfts != nil {
		s.pgfts = pgfts
		s.loader = pgfts
	}
	return s
}

func (s *Service) Search(q Query) Response {
	q = normalizeQuery(q)
	if s.meili != nil && s.meili.Healthy() {
		results, total, err := s.meili.Search(q)
		if err == nil {
			return Response{Results: nonNil(results), Total: total, Query: q.Text, Engine: "meilisearch"}
		}
		s.logger.Warn("meilisearch error, falling back to pgfts", zap.Error(err))
	}

	if s.pgfts == nil {
		return Response{Results: []Result{}, Query: q.Text, Engine: "none"}
	}
	results, total, err := s.pgfts.Search(q)
	if err != nil {
		s.logger.Error("pgfts search failed", zap.Error(err))
		return Response{Results: []Result{}, Total: 0, Query: q.Text, Engine: "postgres"}
	}
	return Response{Results: nonNil(results), Total: total, Query: q.Text, Engine: "postgres"}
}

// IndexContract indexes a contract (fire-and-forget to Meilisearch).
func (s *Service) IndexContract(record ContractRecord) {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	go func() {
		if err := s.meili.IndexContracts([]ContractRecord{record}); err != nil {
			s.logger.Warn("index contract", zap.String("name", record.ID), zap.Error(err))
		}
	}()
}

// ReindexAllFromPG pushes every stored contract into Meilisearch.
func (s *Service) ReindexAllFromPG(ctx context.Context) {
	if s.meili == nil || !s.meili.Healthy() || s.loader == nil {
		return
	}
	records, err := s.loader.LoadAllRecords(ctx)
	if err != nil {
		s.logger.Warn("reindex load failed", zap.Error(err))
		return
	}
	if err := s.meili.IndexContracts(records); err != nil {
		s.logger.Warn("reindex contracts", zap.Error(err))
	}
}

func nonNil(r []Result) []Result {
	if r == nil {
		return []Result{}
	}
	return r
}
