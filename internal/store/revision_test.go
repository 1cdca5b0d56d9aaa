package store

import "testing"

func TestRevisionOf(t *testing.T) {
	row := []string{"P00001", "Levi's 501", "Shimokitazawa", "2024-05-01", "5000"}

	first := revisionOf(row)
	second := revisionOf(row)
	if first != second {
		t.Errorf("same row produced different revisions: %q vs %q", first, second)
	}
	if len(first) != revisionLen {
		t.Errorf("revision length = %d, want %d", len(first), revisionLen)
	}

	changed := []string{"P00001", "Levi's 501", "Shimokitazawa", "2024-05-01", "5001"}
	if revisionOf(changed) == first {
		t.Error("changed cell did not change the revision")
	}

	if revisionOf(nil) == first {
		t.Error("empty row should not collide with a populated row")
	}
}
