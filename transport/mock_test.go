package transport

import (
	"context"
	"testing"
)

func TestMockReplaysResponsesInOrder(t *testing.T) {
	m := &Mock{Responses: [][]byte{[]byte("first"), []byte("second")}}

	if err := m.Write(context.Background(), []byte("cmd1"), 0); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := m.ReadUntil(context.Background(), nil, 0)
	if err != nil || string(got) != "first" {
		t.Fatalf("ReadUntil = %q, %v", got, err)
	}

	got, err = m.ReadUntil(context.Background(), nil, 0)
	if err != nil || string(got) != "second" {
		t.Fatalf("ReadUntil = %q, %v", got, err)
	}
}

func TestMockEmptyResponseIsNoResponse(t *testing.T) {
	m := &Mock{Responses: [][]byte{{}}}
	_, err := m.ReadUntil(context.Background(), nil, 0)
	if err != ErrNoResponse {
		t.Fatalf("err = %v, want ErrNoResponse", err)
	}
}

func TestMockClosedRejectsOperations(t *testing.T) {
	m := &Mock{}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := m.Write(context.Background(), []byte("x"), 0); err != ErrClosed {
		t.Fatalf("Write after close = %v, want ErrClosed", err)
	}
	if _, err := m.ReadUntil(context.Background(), nil, 0); err != ErrClosed {
		t.Fatalf("ReadUntil after close = %v, want ErrClosed", err)
	}
}
