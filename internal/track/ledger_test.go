package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerSeedRejectsDuplicates(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Seed(Job{Key: "a.pdf", Kind: KindDocument, Status: StatusUploading}))

	err := l.Seed(Job{Key: "a.pdf", Kind: KindDocument, Status: StatusUploading})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, 1, l.Len())
}

func TestLedgerSeedRejectsEmptyKey(t *testing.T) {
	l := NewLedger()
	assert.Error(t, l.Seed(Job{Kind: KindDocument}))
}

func TestLedgerMarkError(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Seed(Job{Key: "a.pdf", Kind: KindDocument, Status: StatusUploading}))

	l.MarkError("a.pdf", "server rejected upload")
	got := l.Jobs()[0]
	assert.Equal(t, StatusError, got.Status)
	assert.Equal(t, "server rejected upload", got.ErrorDetail)

	// Terminal records keep their original detail.
	l.MarkError("a.pdf", "second failure")
	assert.Equal(t, "server rejected upload", l.Jobs()[0].ErrorDetail)

	// Unknown keys are a no-op.
	l.MarkError("missing.pdf", "whatever")
	assert.Equal(t, 1, l.Len())
}

func TestLedgerObservePreservesSeedOrder(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Seed(Job{Key: "b.pdf", Kind: KindDocument, Status: StatusUploading}))
	require.NoError(t, l.Seed(Job{Key: "a.pdf", Kind: KindDocument, Status: StatusUploading}))

	l.Observe([]ProgressEntry{{Key: "a.pdf"}, {Key: "b.pdf"}}, nil)

	jobs := l.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "b.pdf", jobs[0].Key)
	assert.Equal(t, "a.pdf", jobs[1].Key)
}

func TestLedgerChildIndex(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Seed(Job{Key: "https://x.com", Kind: KindWebsite, Status: StatusUploading, BaseURL: "https://x.com"}))

	l.Observe([]ProgressEntry{
		{Key: "https://x.com/a", BaseURL: "https://x.com"},
		{Key: "https://x.com/b", BaseURL: "https://x.com"},
	}, nil)

	// The root itself is not its own child.
	assert.Equal(t, 2, l.ChildCount("https://x.com"))
	assert.Equal(t, 0, l.ChildCount("https://other.com"))
}

func TestLedgerAllTerminal(t *testing.T) {
	l := NewLedger()
	assert.False(t, l.AllTerminal(), "empty ledger is not terminal")

	require.NoError(t, l.Seed(Job{Key: "a.pdf", Kind: KindDocument, Status: StatusUploading}))
	assert.False(t, l.AllTerminal())

	l.MarkError("a.pdf", "failed")
	assert.True(t, l.AllTerminal())

	require.NoError(t, l.Seed(Job{Key: "b.pdf", Kind: KindDocument, Status: StatusUploading}))
	assert.False(t, l.AllTerminal())
}

func TestLedgerOnChangeFiresOutsideLock(t *testing.T) {
	l := NewLedger()
	var calls int
	l.SetOnChange(func() {
		// Re-entering the ledger here deadlocks if the hook runs under
		// the ledger lock.
		_ = l.AllTerminal()
		calls++
	})

	require.NoError(t, l.Seed(Job{Key: "a.pdf", Kind: KindDocument, Status: StatusUploading}))
	l.MarkError("a.pdf", "boom")
	l.Observe(nil, nil)
	l.Clear()
	assert.Equal(t, 4, calls)
}

func TestLedgerClear(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Seed(Job{Key: "a.pdf", Kind: KindDocument, Status: StatusUploading}))
	l.Clear()
	assert.Equal(t, 0, l.Len())

	// Cleared keys can be seeded again in a fresh session.
	assert.NoError(t, l.Seed(Job{Key: "a.pdf", Kind: KindDocument, Status: StatusUploading}))
}
