package gitrepo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func bundle(title string) Content {
	return Content{
		Name:  "nda",
		Title: title,
		Data:  json.RawMessage(fmt.Sprintf(`[{"type":"block","title":%q,"children":[{"type":"clause","children":[{"text":"Keep it secret."}]}]}]`, title)),
	}
}

func TestContractHistoryLifecycle(t *testing.T) {
	tempDir := t.TempDir()
	svc := New(tempDir)

	first, changed, err := svc.Commit("nda", bundle("NDA"), "importer", "Import nda")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if !changed || first.Hash == "" {
		t.Fatalf("expected initial commit, got %+v changed=%v", first, changed)
	}
	if _, err := os.Stat(filepath.Join(tempDir, "nda", contentFile)); err != nil {
		t.Fatalf("content file missing: %v", err)
	}

	second, changed, err := svc.Commit("nda", bundle("Mutual NDA"), "importer", "Reimport nda")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if !changed || second.Hash == first.Hash {
		t.Fatalf("expected a new revision, got %+v", second)
	}

	history, err := svc.History("nda", 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 2 || history[0].Hash != second.Hash || history[1].Hash != first.Hash {
		t.Fatalf("unexpected history: %+v", history)
	}

	limited, err := svc.History("nda", 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("expected one entry, got %+v err=%v", limited, err)
	}

	old, info, err := svc.GetContentByHash("nda", first.Hash)
	if err != nil {
		t.Fatalf("GetContentByHash() error = %v", err)
	}
	if old.Title != "NDA" || info.Hash != first.Hash {
		t.Fatalf("unexpected old content: %+v %+v", old, info)
	}

	head, headInfo, err := svc.GetHeadContent("nda")
	if err != nil {
		t.Fatalf("GetHeadContent() error = %v", err)
	}
	if head.Title != "Mutual NDA" || headInfo.Hash != second.Hash {
		t.Fatalf("unexpected head: %+v %+v", head, headInfo)
	}
}

func TestCommitSkipsUnchangedContent(t *testing.T) {
	svc := New(t.TempDir())

	first, _, err := svc.Commit("nda", bundle("NDA"), "importer", "Import nda")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	reformatted := bundle("NDA")
	var parsed any
	_ = json.Unmarshal(reformatted.Data, &parsed)
	reformatted.Data, _ = json.MarshalIndent(parsed, "", "    ")

	again, changed, err := svc.Commit("nda", reformatted, "importer", "Reimport nda")
	if err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if changed || again.Hash != first.Hash {
		t.Fatalf("expected no new revision, got %+v changed=%v", again, changed)
	}
}

func TestUnknownContractHasNoHistory(t *testing.T) {
	svc := New(t.TempDir())

	if _, err := svc.History("missing", 0); !errors.Is(err, ErrNoRepository) {
		t.Fatalf("expected ErrNoRepository, got %v", err)
	}
	if _, _, err := svc.GetHeadContent("missing"); !errors.Is(err, ErrNoRepository) {
		t.Fatalf("expected ErrNoRepository, got %v", err)
	}
}

func TestUnknownRevision(t *testing.T) {
	svc := New(t.TempDir())
	if _, _, err := svc.Commit("nda", bundle("NDA"), "importer", "Import nda"); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	if _, _, err := svc.GetContentByHash("nda", "deadbee"); !errors.Is(err, ErrUnknownRevision) {
		t.Fatalf("expected ErrUnknownRevision, got %v", err)
	}
}

func TestConcurrentCommitsAreSerialized(t *testing.T) {
	svc := New(t.TempDir())

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := svc.Commit("nda", bundle(fmt.Sprintf("NDA v%d", i)), "importer", "Import")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent commit failed: %v", err)
		}
	}

	history, err := svc.History("nda", 0)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(history) != 8 {
		t.Fatalf("expected 8 revisions, got %d", len(history))
	}
}

func TestHasChanges(t *testing.T) {
	base := bundle("NDA")
	if HasChanges(base, base) {
		t.Fatal("identical content must not report changes")
	}
	renamed := base
	renamed.Title = "Other"
	if !HasChanges(base, renamed) {
		t.Fatal("title change must be detected")
	}
	edited := base
	edited.Data = json.RawMessage(`[]`)
	if !HasChanges(base, edited) {
		t.Fatal("data change must be detected")
	}
}

func TestSanitizeEmail(t *testing.T) {
	if got := sanitizeEmail("Jo Smith"); got != "Jo.Smith" {
		t.Fatalf("unexpected %q", got)
	}
	if got := sanitizeEmail("@@"); got != "importer" {
		t.Fatalf("unexpected %q", got)
	}
}
