package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collidingRepo reports collisions from a scripted queue, then falls
// back to the real fake.
type collidingRepo struct {
	*fakeCardRepo
	responses []bool
	calls     int
}

func (r *collidingRepo) CodeExists(ctx context.Context, code string) (bool, error) {
	if r.calls < len(r.responses) {
		exists := r.responses[r.calls]
		r.calls++
		return exists, nil
	}
	r.calls++
	return r.fakeCardRepo.CodeExists(ctx, code)
}

func TestCodeGenerator_Format(t *testing.T) {
	gen := NewCodeGenerator(newFakeCardRepo(), "GIFT-", 16)

	pattern := regexp.MustCompile(`^GIFT-[A-Z0-9]{16}$`)
	seen := make(map[string]bool)

	for i := 0; i < 50; i++ {
		code, err := gen.Generate(context.Background())
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
		seen[code] = true
	}

	// 50 draws from a 36^16 space never repeat.
	assert.Len(t, seen, 50)
}

func TestCodeGenerator_RetriesOnCollision(t *testing.T) {
	repo := &collidingRepo{
		fakeCardRepo: newFakeCardRepo(),
		responses:    []bool{true, true, false},
	}
	gen := NewCodeGenerator(repo, "GIFT-", 16)

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	assert.Equal(t, 3, repo.calls)
}

func TestCodeGenerator_ExhaustionReturnsLastDraw(t *testing.T) {
	repo := &collidingRepo{
		fakeCardRepo: newFakeCardRepo(),
		responses:    []bool{true, true, true, true, true, true, true},
	}
	gen := NewCodeGenerator(repo, "GIFT-", 16)

	code, err := gen.Generate(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, code)
	// Gives up after five attempts and leaves the rest to the unique
	// constraint on the code column.
	assert.Equal(t, 5, repo.calls)
}
