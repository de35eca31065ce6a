package partials

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"go-remote-handlebars/internal/cache/memory"
	"go-remote-handlebars/internal/compiler/handlebars"
	"go-remote-handlebars/internal/filesystem"
	"go-remote-handlebars/internal/interfaces/mock"
	"go-remote-handlebars/internal/models"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newResolver() (*Resolver, *memory.Cache[models.PartialMap]) {
	store := memory.NewForever[models.PartialMap](memory.WithName("partials"))
	return NewResolver(store, filesystem.NewOS(), handlebars.NewCompiler(), handlebars.Extensions, zap.NewNop()), store
}

func render(t *testing.T, tpl models.CompiledTemplate) string {
	t.Helper()
	out, err := tpl.Execute(nil, models.RenderSettings{})
	require.NoError(t, err)
	return out
}

func TestName(t *testing.T) {
	assert.Equal(t, "sidebar", Name("sidebar.handlebars"))
	assert.Equal(t, "nested/partial", Name("nested/partial.hbs"))
	assert.Equal(t, "a/b/c", Name("a/b/c.hbs"))
}

func TestResolver_Resolve(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "sidebar.handlebars"), "<aside/>")
	writeFile(t, filepath.Join(dir, "nested", "partial.hbs"), "<nested/>")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")

	resolver, _ := newResolver()
	partials, err := resolver.Resolve(context.Background(), []string{dir}, models.LoadOptions{})

	require.NoError(t, err)
	require.Len(t, partials, 2)
	assert.Equal(t, "<aside/>", render(t, partials["sidebar"]))
	assert.Equal(t, "<nested/>", render(t, partials["nested/partial"]))
}

func TestResolver_LaterDirectoryOverrides(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writeFile(t, filepath.Join(a, "x.hbs"), "from A")
	writeFile(t, filepath.Join(a, "only-a.hbs"), "A only")
	writeFile(t, filepath.Join(b, "x.hbs"), "from B")

	resolver, _ := newResolver()

	partials, err := resolver.Resolve(context.Background(), []string{a, b}, models.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from B", render(t, partials["x"]))
	assert.Equal(t, "A only", render(t, partials["only-a"]))

	reversed, err := resolver.Resolve(context.Background(), []string{b, a}, models.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "from A", render(t, reversed["x"]))
}

func TestResolver_CachedUntilDisabled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "x.hbs"), "v1")

	resolver, store := newResolver()
	ctx := context.Background()

	_, err := resolver.Resolve(ctx, []string{dir}, models.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	writeFile(t, filepath.Join(dir, "x.hbs"), "v2")
	writeFile(t, filepath.Join(dir, "y.hbs"), "new")

	cached, err := resolver.Resolve(ctx, []string{dir}, models.LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "v1", render(t, cached["x"]))
	assert.NotContains(t, cached, "y")

	fresh, err := resolver.Resolve(ctx, []string{dir}, models.LoadOptions{DisableCache: true})
	require.NoError(t, err)
	assert.Equal(t, "v2", render(t, fresh["x"]))
	assert.Contains(t, fresh, "y")
}

func TestResolver_MissingDirectory(t *testing.T) {
	resolver, store := newResolver()

	_, err := resolver.Resolve(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, models.LoadOptions{})

	assert.ErrorIs(t, err, models.ErrRead)
	assert.Equal(t, 0, store.Len())
}

func TestResolver_NoDirectories(t *testing.T) {
	resolver, _ := newResolver()

	_, err := resolver.Resolve(context.Background(), nil, models.LoadOptions{})

	assert.ErrorIs(t, err, models.ErrConfig)
}

func TestResolver_CompileError(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := mock.NewMockFileSystem(ctrl)
	compiler := mock.NewMockCompiler(ctrl)
	dir := t.TempDir()

	fs.EXPECT().ListFilesRecursive(dir, handlebars.Extensions).Return([]string{"bad.hbs"}, nil)
	fs.EXPECT().ReadFile(filepath.Join(dir, "bad.hbs")).Return([]byte("{{#if"), nil)
	compiler.EXPECT().Compile("{{#if").Return(nil, errors.New("unexpected EOF"))

	store := memory.NewForever[models.PartialMap]()
	resolver := NewResolver(store, fs, compiler, handlebars.Extensions, zap.NewNop())

	_, err := resolver.Resolve(context.Background(), []string{dir}, models.LoadOptions{})

	assert.ErrorIs(t, err, models.ErrCompile)
	assert.Equal(t, 0, store.Len())
}

func TestResolver_MergeOrderIndependentOfCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	fs := mock.NewMockFileSystem(ctrl)
	compiler := mock.NewMockCompiler(ctrl)
	first := &struct{ models.CompiledTemplate }{}
	second := &struct{ models.CompiledTemplate }{}

	fs.EXPECT().ListFilesRecursive("/a", gomock.Any()).Return([]string{"x.hbs"}, nil)
	fs.EXPECT().ListFilesRecursive("/b", gomock.Any()).Return([]string{"x.hbs"}, nil)
	fs.EXPECT().ReadFile(filepath.Join("/a", "x.hbs")).Return([]byte("a"), nil)
	fs.EXPECT().ReadFile(filepath.Join("/b", "x.hbs")).Return([]byte("b"), nil)
	compiler.EXPECT().Compile("a").Return(first, nil)
	compiler.EXPECT().Compile("b").Return(second, nil)

	resolver := NewResolver(memory.NewForever[models.PartialMap](), fs, compiler, handlebars.Extensions, zap.NewNop())
	partials, err := resolver.Resolve(context.Background(), []string{"/a", "/b"}, models.LoadOptions{})

	require.NoError(t, err)
	assert.Same(t, second, partials["x"])
}
