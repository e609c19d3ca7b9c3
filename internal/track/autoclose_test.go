package track

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoCloserFiresAfterGrace(t *testing.T) {
	l := NewLedger()
	fired := make(chan struct{})
	a := NewAutoCloser(l, 10*time.Millisecond, func() { close(fired) })
	l.SetOnChange(a.Observe)

	require.NoError(t, l.Seed(Job{Key: "a.pdf", Kind: KindDocument, Status: StatusUploading}))
	l.Observe(nil, []CompletedEntry{{Key: "a.pdf"}})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("auto-closer did not fire")
	}
	assert.Equal(t, 0, l.Len(), "ledger cleared on close")
}

func TestAutoCloserNotArmedWhileJobsActive(t *testing.T) {
	l := NewLedger()
	fired := make(chan struct{})
	a := NewAutoCloser(l, 10*time.Millisecond, func() { close(fired) })
	l.SetOnChange(a.Observe)

	require.NoError(t, l.Seed(Job{Key: "a.pdf", Kind: KindDocument, Status: StatusUploading}))

	select {
	case <-fired:
		t.Fatal("fired with a non-terminal job")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestAutoCloserDisarmedByNewSeed(t *testing.T) {
	l := NewLedger()
	fired := make(chan struct{})
	a := NewAutoCloser(l, 30*time.Millisecond, func() { close(fired) })
	l.SetOnChange(a.Observe)

	require.NoError(t, l.Seed(Job{Key: "a.pdf", Kind: KindDocument, Status: StatusUploading}))
	l.MarkError("a.pdf", "failed") // all terminal, closer armed

	// New submission before the grace elapses keeps the session alive.
	require.NoError(t, l.Seed(Job{Key: "b.pdf", Kind: KindDocument, Status: StatusUploading}))

	select {
	case <-fired:
		t.Fatal("fired despite new active job")
	case <-time.After(60 * time.Millisecond):
	}
	assert.Equal(t, 2, l.Len())
}

func TestAutoCloserStop(t *testing.T) {
	l := NewLedger()
	fired := make(chan struct{})
	a := NewAutoCloser(l, 10*time.Millisecond, func() { close(fired) })
	l.SetOnChange(a.Observe)

	require.NoError(t, l.Seed(Job{Key: "a.pdf", Kind: KindDocument, Status: StatusUploading}))
	l.MarkError("a.pdf", "failed")
	a.Stop()

	select {
	case <-fired:
		t.Fatal("fired after Stop")
	case <-time.After(50 * time.Millisecond):
	}
}
