package errors

import (
	"errors"
	"fmt"
	"testing"
)

var errSentinel = errors.New("sentinel")

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid settings").
			WithSeverity(SeverityFatal).
			WithContext("file", "settings.yaml").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		file, exists := err.Context().GetString("file")
		if !exists || file != "settings.yaml" {
			t.Errorf("expected context file=settings.yaml, got %v", file)
		}
	})

	t.Run("Sentinel survives wrapping", func(t *testing.T) {
		err := WrapError(fmt.Errorf("pattern %q: %w", "home", errSentinel), CategoryRouting, "resolve failed").Build()
		if !errors.Is(err, errSentinel) {
			t.Fatalf("expected errors.Is to find sentinel through classified error")
		}
	})

	t.Run("Detection through wrapping", func(t *testing.T) {
		inner := RenderError("template missing").Build()
		outer := fmt.Errorf("build: %w", inner)
		if !IsClassified(outer) {
			t.Fatal("expected wrapped classified error to be detected")
		}
		if GetCategory(outer) != CategoryRender {
			t.Fatalf("expected render category, got %s", GetCategory(outer))
		}
		if !HasCategory(outer, CategoryRender) {
			t.Fatal("expected HasCategory to see render")
		}
	})

	t.Run("Unclassified defaults", func(t *testing.T) {
		err := errors.New("plain")
		if GetCategory(err) != CategoryInternal {
			t.Errorf("expected internal category")
		}
		if GetSeverity(err) != SeverityError {
			t.Errorf("expected error severity")
		}
	})
}

func TestErrorContextImmutableCopy(t *testing.T) {
	base := NewError(CategoryBuild, "write failed").Build()
	withPath := base.WithContext("path", "/tmp/x")
	if _, ok := base.Context().Get("path"); ok {
		t.Fatal("WithContext must not mutate the original error")
	}
	if p, _ := withPath.Context().GetString("path"); p != "/tmp/x" {
		t.Fatalf("expected path context, got %q", p)
	}
}
