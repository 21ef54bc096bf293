// Package gitrepo keeps the revision history of imported contract bundles, one
// go-git repository per contract name with the bundle stored as content.json.
package gitrepo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

const (
	contentFile = "content.json"
	mainBranch  = "main"
)

var (
	ErrNoRepository    = errors.New("contract has no revision history")
	ErrUnknownRevision = errors.New("unknown revision")
)

// Content is what one revision stores.
type Content struct {
	Name  string          `json:"name"`
	Title string          `json:"title"`
	Data  json.RawMessage `json:"data"`
}

type CommitInfo struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

type Service struct {
	baseDir string
	lockMu  sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(baseDir string) *Service {
	return &Service{
		baseDir: baseDir,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Commit records content as the new head of the contract's history, creating the
// repository on first use. When the bundle is unchanged no commit is made and the
// current head is returned with changed=false.
func (s *Service) Commit(name string, content Content, author, message string) (CommitInfo, bool, error) {
	lock := s.contractLock(name)
	lock.Lock()
	defer lock.Unlock()

	repo, err := s.openOrInit(name)
	if err != nil {
		return CommitInfo{}, false, err
	}

	if head, err := headCommit(repo); err == nil {
		current, err := readContentFromCommit(head)
		if err != nil {
			return CommitInfo{}, false, err
		}
		if !HasChanges(current, content) {
			return toCommitInfo(head), false, nil
		}
	} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return CommitInfo{}, false, err
	}

	hash, err := s.commit(repo, content, author, message)
	if err != nil {
		return CommitInfo{}, false, err
	}
	commitObj, err := repo.CommitObject(hash)
	if err != nil {
		return CommitInfo{}, false, fmt.Errorf("read commit object: %w", err)
	}
	return toCommitInfo(commitObj), true, nil
}

func (s *Service) GetHeadContent(name string) (Content, CommitInfo, error) {
	lock := s.contractLock(name)
	lock.Lock()
	defer lock.Unlock()

	repo, err := s.open(name)
	if err != nil {
		return Content{}, CommitInfo{}, err
	}
	commitObj, err := headCommit(repo)
	if err != nil {
		return Content{}, CommitInfo{}, err
	}
	content, err := readContentFromCommit(commitObj)
	if err != nil {
		return Content{}, CommitInfo{}, err
	}
	return content, toCommitInfo(commitObj), nil
}

// GetContentByHash accepts full hashes and abbreviations as returned by History.
func (s *Service) GetContentByHash(name, hash string) (Content, CommitInfo, error) {
	lock := s.contractLock(name)
	lock.Lock()
	defer lock.Unlock()

	repo, err := s.open(name)
	if err != nil {
		return Content{}, CommitInfo{}, err
	}
	resolvedHash, err := resolveHash(repo, hash)
	if err != nil {
		return Content{}, CommitInfo{}, err
	}
	commitObj, err := repo.CommitObject(resolvedHash)
	if errors.Is(err, plumbing.ErrObjectNotFound) {
		return Content{}, CommitInfo{}, fmt.Errorf("%w: %s", ErrUnknownRevision, hash)
	}
	if err != nil {
		return Content{}, CommitInfo{}, fmt.Errorf("read commit %s: %w", hash, err)
	}
	content, err := readContentFromCommit(commitObj)
	if err != nil {
		return Content{}, CommitInfo{}, err
	}
	return content, toCommitInfo(commitObj), nil
}

// History lists revisions newest first. limit <= 0 means all of them.
func (s *Service) History(name string, limit int) ([]CommitInfo, error) {
	lock := s.contractLock(name)
	lock.Lock()
	defer lock.Unlock()

	repo, err := s.open(name)
	if err != nil {
		return nil, err
	}
	head, err := headCommit(repo)
	if err != nil {
		return nil, err
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	items := make([]CommitInfo, 0)
	err = iter.ForEach(func(commitObj *object.Commit) error {
		items = append(items, toCommitInfo(commitObj))
		if limit > 0 && len(items) >= limit {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return items, nil
}

func (s *Service) repoPath(name string) string {
	return filepath.Join(s.baseDir, name)
}

func (s *Service) contractLock(name string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[name]
	if ok {
		return lock
	}
	lock = &sync.Mutex{}
	s.locks[name] = lock
	return lock
}

func (s *Service) open(name string) (*git.Repository, error) {
	repo, err := git.PlainOpen(s.repoPath(name))
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("%w: %s", ErrNoRepository, name)
	}
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}
	return repo, nil
}

func (s *Service) openOrInit(name string) (*git.Repository, error) {
	path := s.repoPath(name)
	repo, err := git.PlainOpen(path)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create repo dir: %w", err)
	}
	repo, err = git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(mainBranch))); err != nil {
		return nil, fmt.Errorf("set HEAD to main: %w", err)
	}
	return repo, nil
}

func headCommit(repo *git.Repository) (*object.Commit, error) {
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(mainBranch), true)
	if err != nil {
		return nil, err
	}
	commitObj, err := repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("load commit object: %w", err)
	}
	return commitObj, nil
}

func (s *Service) commit(repo *git.Repository, content Content, author, message string) (plumbing.Hash, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("open worktree: %w", err)
	}

	payload, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("marshal content: %w", err)
	}
	repoRoot := worktree.Filesystem.Root()
	if err := os.WriteFile(filepath.Join(repoRoot, contentFile), append(payload, '\n'), 0o644); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("write %s: %w", contentFile, err)
	}
	if _, err := worktree.Add(contentFile); err != nil {
		return plumbing.ZeroHash, fmt.Errorf("git add content: %w", err)
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author,
			Email: fmt.Sprintf("%s@contractview.local", sanitizeEmail(author)),
			When:  time.Now(),
		},
	})
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("commit content: %w", err)
	}
	return hash, nil
}

func readContentFromCommit(commitObj *object.Commit) (Content, error) {
	file, err := commitObj.File(contentFile)
	if err != nil {
		return Content{}, fmt.Errorf("load %s from commit: %w", contentFile, err)
	}
	reader, err := file.Reader()
	if err != nil {
		return Content{}, fmt.Errorf("open content reader: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return Content{}, fmt.Errorf("read content bytes: %w", err)
	}

	var content Content
	if err := json.Unmarshal(raw, &content); err != nil {
		return Content{}, fmt.Errorf("decode commit content: %w", err)
	}
	return content, nil
}

// HasChanges compares titles and the bundle JSON independent of formatting.
func HasChanges(from, to Content) bool {
	if from.Name != to.Name || from.Title != to.Title {
		return true
	}
	return !bytes.Equal(normalizeJSON(from.Data), normalizeJSON(to.Data))
}

func toCommitInfo(commitObj *object.Commit) CommitInfo {
	return CommitInfo{
		Hash:      commitObj.Hash.String()[:7],
		Message:   commitObj.Message,
		Author:    commitObj.Author.Name,
		CreatedAt: commitObj.Author.When,
	}
}

func sanitizeEmail(input string) string {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out = append(out, r)
			continue
		}
		if r == ' ' || r == '-' || r == '_' {
			out = append(out, '.')
		}
	}
	if len(out) == 0 {
		return "importer"
	}
	return string(out)
}

func normalizeJSON(raw json.RawMessage) []byte {
	if len(raw) == 0 {
		return nil
	}
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return raw
	}
	normalized, err := json.Marshal(parsed)
	if err != nil {
		return raw
	}
	return normalized
}

func resolveHash(repo *git.Repository, hash string) (plumbing.Hash, error) {
	if len(hash) == 40 {
		return plumbing.NewHash(hash), nil
	}
	resolved, err := repo.ResolveRevision(plumbing.Revision(hash))
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return plumbing.ZeroHash, fmt.Errorf("%w: %s", ErrUnknownRevision, hash)
	}
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve hash %s: %w", hash, err)
	}
	return *resolved, nil
}
