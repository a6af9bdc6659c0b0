package usecase

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/kirillkom/program-assistant/internal/core/domain"
)

var testElectives = []string{"выбор", "электив", "модуль", "трек", "курс", "дисциплин", "каталог"}

func recommenderFixture(chunks ...domain.DocumentChunk) *Recommender {
	docs := &docsFake{chunks: chunks}
	return NewRecommender(NewKnowledge(&indexFake{}, docs, nil), testElectives, 0)
}

func chunk(id, text string) domain.DocumentChunk {
	slug := id[:strings.LastIndex(id, "-")]
	return domain.DocumentChunk{ID: id, URL: "https://abit.itmo.ru/program/master/" + slug, Title: slug, Text: text}
}

func TestRecommenderRanksByKeywordsAndTags(t *testing.T) {
	r := recommenderFixture(
		chunk("ai_product-0", "Выборные дисциплины: продуктовый трек"),
		chunk("ai-0", "Общежитие и стипендия"),
		chunk("ai-1", "Модуль по выбору: курс python для ml"),
		chunk("ai-2", "Каталог дисциплин"),
	)

	got := r.Recommend(context.Background(), []domain.BackgroundTag{domain.TagPython, domain.TagML}, domain.ProgramAI, 0)
	// "ai" is a substring of "ai_product", so its chunks are candidates too.
	if len(got) != 3 {
		t.Fatalf("expected 3 recommendations, got %d: %v", len(got), got)
	}
	if !strings.HasPrefix(got[0], "Модуль по выбору") {
		t.Fatalf("expected tag-matching chunk first, got %q", got[0])
	}
	for _, rec := range got {
		if strings.Contains(rec, "Общежитие") {
			t.Fatalf("zero-score chunk must not be recommended: %v", got)
		}
	}
}

func TestRecommenderTiesKeepOriginalOrder(t *testing.T) {
	r := recommenderFixture(
		chunk("ai_product-0", "первый курс"),
		chunk("ai_product-1", "второй курс"),
	)
	got := r.Recommend(context.Background(), nil, domain.ProgramAIProduct, 5)
	if len(got) != 2 || got[0] != "первый курс" || got[1] != "второй курс" {
		t.Fatalf("unexpected order: %v", got)
	}
}

func TestRecommenderEmptyWithoutElectiveChunks(t *testing.T) {
	r := recommenderFixture(
		chunk("ai-0", "Стоимость обучения"),
		chunk("ai_product-0", "курс по выбору"),
	)
	if got := r.Recommend(context.Background(), nil, domain.ProgramAIProduct, 3); len(got) != 1 {
		t.Fatalf("expected ai_product chunk, got %v", got)
	}

	r = recommenderFixture(chunk("ai-0", "Стоимость обучения"))
	if got := r.Recommend(context.Background(), nil, domain.ProgramAI, 3); len(got) != 0 {
		t.Fatalf("expected no recommendations, got %v", got)
	}
}

func TestRecommenderTruncatesAndLimits(t *testing.T) {
	long := "курс " + strings.Repeat("я", 1000)
	r := recommenderFixture(
		chunk("ai-0", long),
		chunk("ai-1", "курс"),
		chunk("ai-2", "курс"),
	)

	got := r.Recommend(context.Background(), nil, domain.ProgramAI, 2)
	if len(got) != 2 {
		t.Fatalf("expected top_k=2 results, got %d", len(got))
	}
	if n := utf8.RuneCountInString(got[0]); n != 400 {
		t.Fatalf("expected 400-rune snippet, got %d", n)
	}
}

func TestRecommenderUnknownProgram(t *testing.T) {
	r := recommenderFixture(chunk("ai-0", "курс"))
	if got := r.Recommend(context.Background(), nil, "", 3); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := truncateRunes("привет", 3); got != "при" {
		t.Fatalf("truncateRunes() = %q", got)
	}
	if got := truncateRunes("hi", 10); got != "hi" {
		t.Fatalf("truncateRunes() = %q", got)
	}
}
