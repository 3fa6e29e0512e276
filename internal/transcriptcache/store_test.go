package transcriptcache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"pronounce/internal/transcript"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "cache", "transcripts.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleUtterances() []transcript.Utterance {
	return []transcript.Utterance{{
		Text: "hello world",
		Words: []transcript.RawWord{
			{Word: transcript.String("hello"), Start: transcript.Float(0.1), End: transcript.Float(0.4), Confidence: transcript.Float(0.9)},
			{Word: transcript.String("world"), Start: transcript.Float(0.5), End: transcript.Float(0.9)},
		},
	}}
}

func TestPutLookupRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	err := store.Put(ctx, Entry{
		AudioSHA256: "abc",
		Language:    "EN",
		JobID:       "job-1",
		Source:      "take.wav",
		AudioBytes:  42,
		Utterances:  sampleUtterances(),
		CreatedAt:   created,
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	entry, err := store.Lookup(ctx, "abc", "en")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry == nil {
		t.Fatal("expected cached entry")
	}
	if entry.Provider != "gladia" || entry.JobID != "job-1" || entry.Source != "take.wav" || entry.AudioBytes != 42 {
		t.Fatalf("entry = %+v", entry)
	}
	if !entry.CreatedAt.Equal(created) {
		t.Fatalf("created = %v, want %v", entry.CreatedAt, created)
	}
	words, err := transcript.Flatten(entry.Utterances)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}
	if len(words) != 2 || words[1].Confidence != nil || *words[0].Start != 0.1 {
		t.Fatalf("words = %+v", words)
	}
}

func TestLookupMissReturnsNil(t *testing.T) {
	store := openTestStore(t)
	entry, err := store.Lookup(context.Background(), "missing", "")
	if err != nil || entry != nil {
		t.Fatalf("Lookup = %v, %v", entry, err)
	}
}

func TestLanguageIsPartOfKey(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.Put(ctx, Entry{AudioSHA256: "abc", Language: "en", Utterances: sampleUtterances()}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entry, err := store.Lookup(ctx, "abc", "fr")
	if err != nil || entry != nil {
		t.Fatalf("Lookup(fr) = %v, %v", entry, err)
	}
}

func TestPutReplaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.Put(ctx, Entry{AudioSHA256: "abc", JobID: "one", Utterances: sampleUtterances()}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Put(ctx, Entry{AudioSHA256: "abc", JobID: "two", Utterances: []transcript.Utterance{}}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	entry, err := store.Lookup(ctx, "abc", "")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry.JobID != "two" || len(entry.Utterances) != 0 || entry.Utterances == nil {
		t.Fatalf("entry = %+v", entry)
	}
}

func TestPutValidates(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	if err := store.Put(ctx, Entry{Utterances: sampleUtterances()}); err == nil {
		t.Fatal("expected error without hash")
	}
	if err := store.Put(ctx, Entry{AudioSHA256: "abc"}); err == nil {
		t.Fatal("expected error without utterances")
	}
}

func TestListClearPrune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	old := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, e := range []Entry{
		{AudioSHA256: "old", Utterances: sampleUtterances(), CreatedAt: old},
		{AudioSHA256: "new", Utterances: sampleUtterances(), CreatedAt: recent},
	} {
		if err := store.Put(ctx, e); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	summaries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(summaries) != 2 || summaries[0].AudioSHA256 != "new" || summaries[0].Words != 2 {
		t.Fatalf("summaries = %+v", summaries)
	}

	removed, err := store.Prune(ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil || removed != 1 {
		t.Fatalf("Prune = %d, %v", removed, err)
	}
	removed, err = store.Clear(ctx)
	if err != nil || removed != 1 {
		t.Fatalf("Clear = %d, %v", removed, err)
	}
	summaries, err = store.List(ctx)
	if err != nil || len(summaries) != 0 {
		t.Fatalf("List after clear = %+v, %v", summaries, err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcripts.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Put(context.Background(), Entry{AudioSHA256: "abc", Utterances: sampleUtterances()}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	_ = store.Close()

	store, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	entry, err := store.Lookup(context.Background(), "abc", "")
	if err != nil || entry == nil {
		t.Fatalf("Lookup after reopen = %v, %v", entry, err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transcripts.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = store.Close()

	if _, err := Open(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("err = %v, want ErrSchemaMismatch", err)
	}
}

func TestIsSQLiteBusy(t *testing.T) {
	if !isSQLiteBusy(errors.New("database is locked (5) (SQLITE_BUSY)")) {
		t.Fatal("expected busy")
	}
	if isSQLiteBusy(errors.New("no such table")) {
		t.Fatal("unexpected busy")
	}
}

func TestRetryOnBusyRetries(t *testing.T) {
	calls := 0
	err := retryOnBusy(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Fatalf("retryOnBusy = %v after %d calls", err, calls)
	}
}
