package multiset

import "testing"

func TestMultisetOrderIndependence(t *testing.T) {
	a := New()
	a.Add([]byte("first"))
	a.Add([]byte("second"))

	b := New()
	b.Add([]byte("second"))
	b.Add([]byte("first"))

	if !a.Hash().Equal(b.Hash()) {
		t.Fatalf("TestMultisetOrderIndependence: hashes differ: %s != %s", a.Hash(), b.Hash())
	}

	c := New()
	c.Add([]byte("first"))
	if c.Hash().Equal(a.Hash()) {
		t.Fatalf("TestMultisetOrderIndependence: different multisets have the same hash")
	}
	c.Add([]byte("first"))
	if c.Hash().Equal(New().Hash()) {
		t.Fatalf("TestMultisetOrderIndependence: a repeated element canceled out")
	}
}

func TestMultisetClone(t *testing.T) {
	original := New()
	original.Add([]byte("first"))
	originalHash := original.Hash()

	clone := original.Clone()
	clone.Add([]byte("second"))
	if !original.Hash().Equal(originalHash) {
		t.Fatalf("TestMultisetClone: adding to a clone changed the original")
	}

	expected := New()
	expected.Add([]byte("second"))
	expected.Add([]byte("first"))
	if !clone.Hash().Equal(expected.Hash()) {
		t.Fatalf("TestMultisetClone: the clone lost the elements of the original")
	}
}
