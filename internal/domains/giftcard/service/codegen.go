package service

import (
	"context"
	"crypto/rand"
	"fmt"

	"giftcard-backend/internal/domains/giftcard/repository"
)

const codeCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeGenerator produces gift card codes of the form
// <prefix><N random uppercase alphanumerics>, retrying on collision.
type CodeGenerator struct {
	repo        repository.GiftCardRepository
	prefix      string
	length      int
	maxAttempts int
}

func NewCodeGenerator(repo repository.GiftCardRepository, prefix string, length int) *CodeGenerator {
	return &CodeGenerator{
		repo:        repo,
		prefix:      prefix,
		length:      length,
		maxAttempts: 5,
	}
}

// Generate draws a fresh code and checks it against stored codes.
// After maxAttempts collisions it returns the last draw anyway; the
// unique constraint on the code column catches the residual race.
func (g *CodeGenerator) Generate(ctx context.Context) (string, error) {
	var code string
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		suffix, err := randomSuffix(g.length)
		if err != nil {
			return "", fmt.Errorf("failed to generate code: %w", err)
		}
		code = g.prefix + suffix

		exists, err := g.repo.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code uniqueness: %w", err)
		}
		if !exists {
			return code, nil
		}
	}

	return code, nil
}

func randomSuffix(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i, b := range buf {
		buf[i] = codeCharset[int(b)%len(codeCharset)]
	}
	return string(buf), nil
}
