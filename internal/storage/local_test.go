package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
)

func TestLocalProvider_PutOpenDelete(t *testing.T) {
	dir := t.TempDir()
	p, err := NewLocalProvider(dir)
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}

	ctx := context.Background()
	content := []byte("%PDF-1.4 fake fax body")

	if err := p.Put(ctx, "jobs/abc123/out.pdf", bytes.NewReader(content), int64(len(content)), "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	r, err := p.Open(ctx, "jobs/abc123/out.pdf")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Fatalf("content mismatch: got %q want %q", got, content)
	}

	if err := p.Delete(ctx, "jobs/abc123/out.pdf"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := p.Open(ctx, "jobs/abc123/out.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestLocalProvider_OpenMissingReturnsNotFound(t *testing.T) {
	dir := t.TempDir()
	p, err := NewLocalProvider(dir)
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}

	if _, err := p.Open(context.Background(), "does/not/exist.pdf"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLocalProvider_DeleteMissingIsNotError(t *testing.T) {
	dir := t.TempDir()
	p, err := NewLocalProvider(dir)
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}

	if err := p.Delete(context.Background(), "never/written.pdf"); err != nil {
		t.Fatalf("Delete of missing object should be a no-op, got %v", err)
	}
}

func TestLocalProvider_TraversalStaysWithinRoot(t *testing.T) {
	dir := t.TempDir()
	p, err := NewLocalProvider(dir)
	if err != nil {
		t.Fatalf("NewLocalProvider: %v", err)
	}

	full, err := p.resolve("../../../etc/passwd")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !isWithin(dir, full) && full != dir {
		t.Fatalf("resolved path %q escaped root %q", full, dir)
	}
}
