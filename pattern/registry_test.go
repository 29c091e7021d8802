package pattern

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/cryptex"
)

func TestRegistryRegister(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(MustCompile("tok", `tok-\d+`, "{{TOK}}")))
	assert.True(t, r.Has("tok"))
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRegisterDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(MustCompile("tok", `a+`, "<A>")))

	err := r.Register(MustCompile("tok", `b+`, "<B>"))
	require.Error(t, err)
	assert.ErrorIs(t, err, cryptex.ErrDuplicatePattern)

	// The original entry is untouched.
	p, err := r.Lookup("tok")
	require.NoError(t, err)
	assert.Equal(t, `a+`, p.Expr())
}

func TestRegistryRegisterZeroValue(t *testing.T) {
	r := New()
	assert.ErrorIs(t, r.Register(Pattern{}), cryptex.ErrInvalidPattern)
	assert.ErrorIs(t, r.Override(Pattern{}), cryptex.ErrInvalidPattern)
	assert.Equal(t, 0, r.Len())
}

func TestRegistryOverride(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(MustCompile("tok", `a+`, "<A>")))
	require.NoError(t, r.Override(MustCompile("tok", `b+`, "<B>")))

	p, err := r.Lookup("tok")
	require.NoError(t, err)
	assert.Equal(t, `b+`, p.Expr())
	assert.Equal(t, 1, r.Len())

	// Override also inserts names that are not present yet.
	require.NoError(t, r.Override(MustCompile("other", `c+`, "<C>")))
	assert.True(t, r.Has("other"))
}

func TestRegistryLookupMissing(t *testing.T) {
	r := New()
	_, err := r.Lookup("ghost")
	require.Error(t, err)
	assert.ErrorIs(t, err, cryptex.ErrPatternNotFound)

	var cerr *cryptex.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "lookup", cerr.Op)
	assert.Equal(t, "ghost", cerr.Name)
}

func TestRegistryResolve(t *testing.T) {
	r := NewWithDefaults()

	got, err := r.Resolve(FilePath, OpenAIKey)
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Caller order is preserved.
	assert.Equal(t, FilePath, got[0].Name())
	assert.Equal(t, OpenAIKey, got[1].Name())

	_, err = r.Resolve(OpenAIKey, "does_not_exist")
	require.Error(t, err)
	assert.ErrorIs(t, err, cryptex.ErrPatternNotFound)

	empty, err := r.Resolve()
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRegistryNamesSorted(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(MustCompile("zeta", `z+`, "<Z>")))
	require.NoError(t, r.Register(MustCompile("alpha", `a+`, "<A>")))
	require.NoError(t, r.Register(MustCompile("mid", `m+`, "<M>")))

	assert.Equal(t, []string{"alpha", "mid", "zeta"}, r.Names())
}

func TestRegistryAllSnapshot(t *testing.T) {
	r := NewWithDefaults()
	all := r.All()
	require.Len(t, all, r.Len())

	// Clobbering the snapshot does not reach the registry.
	all[0] = Pattern{}
	p, err := r.Lookup(AnthropicKey)
	require.NoError(t, err)
	assert.NotNil(t, p.Regexp())
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := NewWithDefaults()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			name := fmt.Sprintf("worker_%d", n)
			assert.NoError(t, r.Register(MustCompile(name, `w+`, "<W>")))
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				_ = r.Names()
				_, _ = r.Lookup(OpenAIKey)
				_ = r.Has(FilePath)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, len(Builtins())+8, r.Len())
}

func TestDefaultRegistrySeeded(t *testing.T) {
	names := Names()
	for _, want := range []string{OpenAIKey, AnthropicKey, GitHubToken, FilePath, DatabaseURL} {
		assert.Contains(t, names, want)
	}
	assert.Same(t, Default(), Default())
	assert.NotEmpty(t, All())
}

func TestPackageLevelRegister(t *testing.T) {
	// The default registry is shared process-wide, so this test uses names
	// no other test touches.
	require.NoError(t, Register("pkg_register_probe", `probe-\d+`, "{{PROBE}}"))

	err := Register("pkg_register_probe", `probe-\d+`, "{{PROBE}}")
	assert.ErrorIs(t, err, cryptex.ErrDuplicatePattern)

	p, err := Lookup("pkg_register_probe")
	require.NoError(t, err)
	assert.Equal(t, "{{PROBE}}", p.Placeholder())

	require.NoError(t, Override("pkg_register_probe", `probe-[a-z]+`, "{{PROBE}}"))
	p, err = Lookup("pkg_register_probe")
	require.NoError(t, err)
	assert.Equal(t, `probe-[a-z]+`, p.Expr())
}

func TestPackageLevelRegisterInvalid(t *testing.T) {
	assert.ErrorIs(t, Register("Bad Name", `a+`, "<A>"), cryptex.ErrInvalidName)
	assert.ErrorIs(t, Register("pkg_bad_expr", `[`, "<A>"), cryptex.ErrInvalidPattern)

	// A failed registration leaves no partial entry behind.
	assert.False(t, Default().Has("pkg_bad_expr"))
}
