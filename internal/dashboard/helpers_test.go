package dashboard

import (
	"fmt"
	"testing"
	"time"

	"github.com/hoanghai1803/newsdash/internal/models"
)

func ptr[T any](v T) *T { return &v }

func day(t *testing.T, s string) *time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parsing date %q: %v", s, err)
	}
	return &d
}

// scenarioArticles is the three-article fixture where only #2 is an
// economy story from mid January 2024.
func scenarioArticles() []models.Article {
	return []models.Article{
		{
			ID: 1, Title: "반도체 수출 회복세", Source: "전자신문_속보",
			Published: "2023-12-20T10:00:00", Summary: ptr("메모리 가격 반등"),
			Keywords: []string{"반도체", "메모리"}, MainCategory: ptr("첨단 제조·기술 산업"),
		},
		{
			ID: 2, Title: "AI가 바꾸는 경제 지형", Source: "ZDNet Korea",
			Published: "2024-01-15T09:00:00", Summary: ptr("생성형 AI 투자 확대"),
			Keywords: []string{"ai", "인공지능"}, MainCategory: ptr("디지털·ICT 산업"),
		},
		{
			ID: 3, Title: "클라우드 보안 점검", Source: "보안뉴스",
			Published: "2024-01-20T12:00:00", Summary: nil,
			Keywords: nil, MainCategory: ptr(models.UncategorizedLabel),
		},
	}
}

func numberedArticles(n int) []models.Article {
	out := make([]models.Article, n)
	for i := range out {
		out[i] = models.Article{
			ID:        int64(i + 1),
			Title:     fmt.Sprintf("article %d", i+1),
			Source:    "TechCrunch",
			Published: "2024-01-10T00:00:00",
		}
	}
	return out
}

func ids(articles []models.Article) []int64 {
	out := make([]int64, len(articles))
	for i, a := range articles {
		out[i] = a.ID
	}
	return out
}
