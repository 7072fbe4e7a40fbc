package tracker

import "testing"

func TestCommitAppliesStagedDelta(t *testing.T) {
	tr := New(10, func(v int, d int) int { return v + d })

	tr.Stage(5)
	if _, ok := tr.Pending(); !ok {
		t.Fatal("expected a pending delta after Stage")
	}

	tr.Commit()
	if got := tr.Committed(); got != 15 {
		t.Fatalf("Committed() = %d, want 15", got)
	}
	if _, ok := tr.Pending(); ok {
		t.Fatal("expected no pending delta after Commit")
	}
}

func TestRollbackDiscardsStagedDelta(t *testing.T) {
	tr := New(10, func(v int, d int) int { return v + d })

	tr.Stage(5)
	tr.Rollback()

	if got := tr.Committed(); got != 10 {
		t.Fatalf("Committed() = %d, want unchanged 10", got)
	}
	if _, ok := tr.Pending(); ok {
		t.Fatal("expected no pending delta after Rollback")
	}
}

func TestCommitWithNoPendingIsNoOp(t *testing.T) {
	tr := New("base", func(v string, d string) string { return v + d })
	tr.Commit()
	if got := tr.Committed(); got != "base" {
		t.Fatalf("Committed() = %q, want unchanged %q", got, "base")
	}
}

func TestStageOverwritesPreviousDelta(t *testing.T) {
	tr := New(0, func(v int, d int) int { return v + d })

	tr.Stage(1)
	tr.Stage(2)
	tr.Commit()

	if got := tr.Committed(); got != 2 {
		t.Fatalf("Committed() = %d, want 2 (second Stage should overwrite the first)", got)
	}
}
