package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"contractview/internal/artifact"
	"contractview/internal/auth"
	"contractview/internal/config"
	"contractview/internal/contract"
	"contractview/internal/export"
	"contractview/internal/gitrepo"
	"contractview/internal/library"
	"contractview/internal/logging"
	"contractview/internal/metrics"
	"contractview/internal/rbac"
	"contractview/internal/render"
	"contractview/internal/search"
	"contractview/internal/session"
	"contractview/internal/store"
	"contractview/internal/util"
)

// Session is the caller behind a request. Callers without a token are anonymous viewers.
type Session struct {
	Token     string
	Subject   string
	Role      rbac.Role
	JTI       string
	ExpiresAt time.Time
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

type ImportResult struct {
	Name      string `json:"name"`
	Title     string `json:"title,omitempty"`
	Revision  string `json:"revision,omitempty"`
	Changed   bool   `json:"changed"`
	Malformed int    `json:"malformed"`
	Error     string `json:"error,omitempty"`
}

type ContractDetail struct {
	store.ContractSummary
	Mentions []store.Mention `json:"mentions"`
}

type ExportOutput struct {
	*export.Result
	// URL is set when the file was kept in object storage.
	URL string
}

type contractStore interface {
	ListContracts(context.Context) ([]store.ContractSummary, error)
	GetContract(context.Context, string) (store.Contract, error)
	UpsertContract(context.Context, store.Contract, []store.Mention) error
	ListMentions(context.Context, string) ([]store.Mention, error)
	Ping(context.Context) error
}

type revisionStore interface {
	Commit(name string, content gitrepo.Content, author, message string) (gitrepo.CommitInfo, bool, error)
	GetContentByHash(name, hash string) (gitrepo.Content, gitrepo.CommitInfo, error)
	History(name string, limit int) ([]gitrepo.CommitInfo, error)
}

type valueStore interface {
	Values(ctx context.Context, sessionID string) (render.Table, error)
	SetValue(ctx context.Context, sessionID, mentionID, value string) error
	DeleteValue(ctx context.Context, sessionID, mentionID string) error
	Clear(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
}

type searchIndex interface {
	Search(search.Query) search.Response
	IndexContract(search.ContractRecord)
}

type artifactStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PresignedURL(ctx context.Context, key, filename string, ttl time.Duration) (string, error)
}

type Service struct {
	cfg       config.Config
	library   *library.Library
	store     contractStore
	git       revisionStore
	values    valueStore
	search    searchIndex
	artifacts artifactStore
	exporter  *export.Service
	logger    *zap.Logger
}

func New(cfg config.Config, lib *library.Library, dataStore contractStore, gitService revisionStore, values valueStore, searchService searchIndex, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		cfg:     cfg,
		library: lib,
		store:   dataStore,
		git:     gitService,
		values:  values,
		search:  searchService,
		logger:  logger,
	}
	s.exporter = export.NewService(s)
	return s
}

// WithArtifacts enables keeping exported files in object storage.
func (s *Service) WithArtifacts(artifacts artifactStore) *Service {
	s.artifacts = artifacts
	return s
}

func (s *Service) renderer(source string) *render.Renderer {
	return render.New(
		render.WithDiagnostics(logging.NewRenderDiagnostics(s.logger, source)),
		render.WithContinuousNumbering(s.cfg.ContinuousNumbering),
	)
}

// Import loads one bundle from the contracts directory, records a revision and
// refreshes the stored copy and the search index. Every mention renders with its
// default value for indexing.
func (s *Service) Import(ctx context.Context, name, author string) (ImportResult, error) {
	if s.library == nil {
		return ImportResult{}, domainError(http.StatusServiceUnavailable, "IMPORT_UNAVAILABLE", "No contracts directory configured", nil)
	}
	raw, err := s.library.LoadRaw(name)
	if err != nil {
		return ImportResult{}, err
	}
	data, err := contract.Parse(raw)
	if err != nil {
		return ImportResult{}, &library.LoadError{Name: name, Err: err}
	}

	title := bundleTitle(data, name)
	started := time.Now()
	tree, stats := s.renderer("import:"+name).RenderWithStats(data, nil)
	metrics.ObserveRender("import", stats, time.Since(started))
	malformed := stats.Malformed
	text := render.PlainText(tree)

	info, changed, err := s.git.Commit(name, gitrepo.Content{Name: name, Title: title, Data: raw}, firstNonBlank(author, "importer"), "Import "+name)
	if err != nil {
		return ImportResult{}, fmt.Errorf("commit %s: %w", name, err)
	}

	mentions := mentionCatalog(data)
	if err := s.store.UpsertContract(ctx, store.Contract{
		Name:       name,
		Title:      title,
		Content:    raw,
		Documents:  stats.Documents,
		Revision:   info.Hash,
		SearchText: text,
	}, mentions); err != nil {
		return ImportResult{}, fmt.Errorf("store %s: %w", name, err)
	}

	if s.search != nil {
		s.search.IndexContract(search.ContractRecord{ID: name, Title: title, Text: text})
	}

	s.logger.Info("contract imported",
		zap.String("name", name),
		zap.String("revision", info.Hash),
		zap.Bool("changed", changed),
		zap.Int("mentions", len(mentions)),
		zap.Int("malformed", malformed),
	)
	return ImportResult{Name: name, Title: title, Revision: info.Hash, Changed: changed, Malformed: malformed}, nil
}

// ImportAll imports every bundle in the contracts directory. A bundle that fails
// to load, or disappears between listing and loading, is reported in its result
// and does not stop the others.
func (s *Service) ImportAll(ctx context.Context, author string) ([]ImportResult, error) {
	if s.library == nil {
		return nil, domainError(http.StatusServiceUnavailable, "IMPORT_UNAVAILABLE", "No contracts directory configured", nil)
	}
	names, err := s.library.List()
	if err != nil {
		return nil, err
	}
	results := make([]ImportResult, 0, len(names))
	for _, name := range names {
		result, err := s.Import(ctx, name, author)
		if err != nil {
			var loadErr *library.LoadError
			if !errors.As(err, &loadErr) && !errors.Is(err, library.ErrNotFound) {
				return results, err
			}
			s.logger.Warn("contract skipped", zap.String("name", name), zap.Error(err))
			result = ImportResult{Name: name, Error: err.Error()}
		}
		results = append(results, result)
	}
	return results, nil
}

// WatchLibrary re-imports a bundle whenever its file changes. It blocks until ctx is done.
func (s *Service) WatchLibrary(ctx context.Context) error {
	if s.library == nil {
		return nil
	}
	return s.library.Watch(ctx, func(name string) {
		if _, err := s.Import(ctx, name, "watcher"); err != nil {
			s.logger.Warn("reimport failed", zap.String("name", name), zap.Error(err))
		}
	}, library.WithLogger(s.logger))
}

func (s *Service) ListContracts(ctx context.Context) ([]store.ContractSummary, error) {
	items, err := s.store.ListContracts(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []store.ContractSummary{}
	}
	return items, nil
}

func (s *Service) GetContract(ctx context.Context, name string) (ContractDetail, error) {
	if err := library.ValidateName(name); err != nil {
		return ContractDetail{}, err
	}
	item, err := s.store.GetContract(ctx, name)
	if err != nil {
		return ContractDetail{}, err
	}
	mentions, err := s.Mentions(ctx, name)
	if err != nil {
		return ContractDetail{}, err
	}
	return ContractDetail{
		ContractSummary: store.ContractSummary{
			Name:      item.Name,
			Title:     item.Title,
			Documents: item.Documents,
			Revision:  item.Revision,
			UpdatedAt: item.UpdatedAt,
		},
		Mentions: mentions,
	}, nil
}

// Mentions lists the mention placeholders of a contract in first-appearance order.
func (s *Service) Mentions(ctx context.Context, name string) ([]store.Mention, error) {
	mentions, err := s.store.ListMentions(ctx, name)
	if err != nil {
		return nil, err
	}
	if mentions == nil {
		mentions = []store.Mention{}
	}
	return mentions, nil
}

func (s *Service) History(ctx context.Context, name string, limit int) ([]gitrepo.CommitInfo, error) {
	if err := library.ValidateName(name); err != nil {
		return nil, err
	}
	history, err := s.git.History(name, limit)
	if err != nil {
		return nil, err
	}
	if history == nil {
		history = []gitrepo.CommitInfo{}
	}
	return history, nil
}

// RenderContract renders the stored head of a contract, or a past revision, with
// the session's mention values. An empty sessionID uses every default.
func (s *Service) RenderContract(ctx context.Context, name, revision, sessionID string) (export.Rendered, error) {
	if err := library.ValidateName(name); err != nil {
		return export.Rendered{}, err
	}

	var (
		title string
		raw   json.RawMessage
		hash  string
	)
	if revision == "" {
		item, err := s.store.GetContract(ctx, name)
		if err != nil {
			return export.Rendered{}, err
		}
		title, raw, hash = item.Title, item.Content, item.Revision
	} else {
		content, info, err := s.git.GetContentByHash(name, revision)
		if err != nil {
			return export.Rendered{}, err
		}
		title, raw, hash = content.Title, content.Data, info.Hash
	}

	data, err := contract.Parse(raw)
	if err != nil {
		metrics.RenderFailed("contract")
		return export.Rendered{}, &library.LoadError{Name: name, Err: err}
	}

	values, err := s.SessionValues(ctx, sessionID)
	if err != nil {
		return export.Rendered{}, err
	}

	started := time.Now()
	tree, stats := s.renderer(name).RenderWithStats(data, values)
	metrics.ObserveRender("contract", stats, time.Since(started))

	return export.Rendered{
		Name:       name,
		Title:      title,
		Revision:   hash,
		RenderedAt: time.Now().UTC(),
		Tree:       tree,
	}, nil
}

// RenderData renders a bundle posted by the caller. Nothing is stored.
func (s *Service) RenderData(ctx context.Context, raw json.RawMessage, values map[string]string) (*render.Element, render.Stats, error) {
	data, err := contract.Parse(raw)
	if err != nil {
		metrics.RenderFailed("request")
		return nil, render.Stats{}, domainError(http.StatusUnprocessableEntity, "CONTRACT_UNPARSEABLE", "Contract data could not be parsed", nil)
	}
	var table render.Table
	if values != nil {
		table = render.Table(values)
	}
	started := time.Now()
	tree, stats := s.renderer("request").RenderWithStats(data, table)
	metrics.ObserveRender("request", stats, time.Since(started))
	return tree, stats, nil
}

// SessionValues snapshots a session's mention table. The snapshot is what one
// render reads; later edits only show up in the next render.
func (s *Service) SessionValues(ctx context.Context, sessionID string) (render.Table, error) {
	if sessionID == "" {
		return nil, nil
	}
	if s.values == nil {
		return nil, domainError(http.StatusServiceUnavailable, "SESSIONS_UNAVAILABLE", "Mention sessions are not configured", nil)
	}
	return s.values.Values(ctx, sessionID)
}

func (s *Service) SetMentionValue(ctx context.Context, sessionID, mentionID, value string) error {
	if strings.TrimSpace(mentionID) == "" {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "mention id is required", nil)
	}
	if s.values == nil {
		return domainError(http.StatusServiceUnavailable, "SESSIONS_UNAVAILABLE", "Mention sessions are not configured", nil)
	}
	return s.values.SetValue(ctx, sessionID, mentionID, value)
}

func (s *Service) DeleteMentionValue(ctx context.Context, sessionID, mentionID string) error {
	if s.values == nil {
		return domainError(http.StatusServiceUnavailable, "SESSIONS_UNAVAILABLE", "Mention sessions are not configured", nil)
	}
	return s.values.DeleteValue(ctx, sessionID, mentionID)
}

func (s *Service) ClearSession(ctx context.Context, sessionID string) error {
	if s.values == nil {
		return domainError(http.StatusServiceUnavailable, "SESSIONS_UNAVAILABLE", "Mention sessions are not configured", nil)
	}
	return s.values.Clear(ctx, sessionID)
}

// Export renders and formats a contract. With keep set and object storage
// configured, the file is uploaded and a presigned download URL returned.
func (s *Service) Export(ctx context.Context, req export.Request, keep bool) (ExportOutput, error) {
	result, err := s.exporter.Export(ctx, req)
	if err != nil {
		return ExportOutput{}, err
	}
	out := ExportOutput{Result: result}
	if !keep {
		return out, nil
	}
	if s.artifacts == nil {
		return ExportOutput{}, domainError(http.StatusServiceUnavailable, "STORAGE_UNAVAILABLE", "Object storage is not configured", nil)
	}

	key := artifact.Key(req.Name, req.Revision, util.NewID("exp"), result.Filename)
	if _, err := s.artifacts.Put(ctx, key, result.Data, result.MimeType); err != nil {
		return ExportOutput{}, err
	}
	url, err := s.artifacts.PresignedURL(ctx, key, result.Filename, s.cfg.PresignTTL)
	if err != nil {
		return ExportOutput{}, err
	}
	out.URL = url
	return out, nil
}

func (s *Service) Search(q search.Query) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: q.Text, Engine: "none"}
	}
	return s.search.Search(q)
}

// Login exchanges an access key for a token. The admin key is tried first.
func (s *Service) Login(ctx context.Context, key string) (Session, error) {
	role := rbac.RoleAdmin
	err := auth.CheckKey(s.cfg.AdminKeyHash, key)
	if err != nil {
		role = rbac.RoleEditor
		err = auth.CheckKey(s.cfg.EditorKeyHash, key)
	}
	if err != nil {
		if errors.Is(err, auth.ErrLoginDisabled) && s.cfg.AdminKeyHash != "" {
			err = auth.ErrInvalidKey
		}
		return Session{}, err
	}

	claims := auth.NewClaims(string(role), string(role), s.cfg.AccessTTL)
	token, err := auth.IssueToken([]byte(s.cfg.TokenSecret), claims)
	if err != nil {
		return Session{}, err
	}
	s.logger.Info("login", zap.String("role", string(role)), zap.String("jti", claims.JTI))
	return Session{
		Token:     token,
		Subject:   claims.Sub,
		Role:      role,
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) SessionFromToken(token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.TokenSecret), token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		Token:     token,
		Subject:   claims.Sub,
		Role:      rbac.Normalize(claims.Role),
		JTI:       claims.JTI,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

// Ready pings every backing service and reports each one.
func (s *Service) Ready(ctx context.Context) (bool, map[string]any) {
	ok := true
	checks := map[string]any{}
	check := func(name string, ping func(context.Context) error) {
		if err := ping(ctx); err != nil {
			ok = false
			checks[name] = map[string]any{"status": "error", "error": err.Error()}
			return
		}
		checks[name] = map[string]any{"status": "ok"}
	}
	check("database", s.store.Ping)
	if s.values != nil {
		check("redis", s.values.Ping)
	}
	return ok, checks
}

func bundleTitle(data contract.Data, fallback string) string {
	for _, doc := range data {
		if title := strings.TrimSpace(doc.Title); title != "" {
			return title
		}
	}
	return fallback
}

func mentionCatalog(data contract.Data) []store.Mention {
	infos := data.Mentions()
	mentions := make([]store.Mention, 0, len(infos))
	for _, info := range infos {
		mentions = append(mentions, store.Mention{
			ID:           info.ID,
			Title:        info.Title,
			DefaultValue: info.DefaultValue,
			VariableType: info.VariableType,
			Occurrences:  info.Occurrences,
		})
	}
	return mentions
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

var _ export.Source = (*Service)(nil)
var _ valueStore = (*session.RedisStore)(nil)
