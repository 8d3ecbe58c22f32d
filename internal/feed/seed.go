package feed

import (
	"time"

	"github.com/ButyrinIA/forum/internal/models"
)

// Seed возвращает статически встроенный набор контента. Он показывается,
// когда удаленное хранилище недоступно или пусто.
func Seed() []models.ContentItem {
	now := time.Now()
	return []models.ContentItem{
		{
			ID:       "1",
			Kind:     models.KindTopic,
			Title:    "How to use the platform effectively",
			Body:     "We will discover the ins and outs of the platform, from creating topic to engaging with community members",
			AuthorID: "2",
			Author: models.AuthorSnapshot{
				ID:     "2",
				Name:   "Alice Johnson",
				Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Alice",
			},
			Category:   "Platform Tips",
			Tags:       []string{"tutorial", "beginner"},
			VoteCount:  15,
			ReplyCount: 32,
			ViewCount:  245,
			CreatedAt:  now.Add(-5 * time.Minute),
			Trending:   true,
		},
		{
			ID:       "2",
			Kind:     models.KindTopic,
			Title:    "What's your favorite programming language?",
			Body:     "Vote on your favorite programming language in this poll and let's see which language the community prefers the most",
			AuthorID: "3",
			Author: models.AuthorSnapshot{
				ID:     "3",
				Name:   "Bob Smith",
				Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Bob",
			},
			Category:   "Programming",
			Tags:       []string{"poll", "discussion"},
			VoteCount:  45,
			ReplyCount: 88,
			ViewCount:  892,
			CreatedAt:  now.Add(-time.Minute),
			Trending:   true,
		},
		{
			ID:       "3",
			Kind:     models.KindArticle,
			Title:    "JavaScript Best Practices",
			Body:     "In this article, we will discuss best practices for writing clean and efficient JavaScript code",
			AuthorID: "4",
			Author: models.AuthorSnapshot{
				ID:     "4",
				Name:   "Caro Williams",
				Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Caro",
			},
			Category:   "Programming",
			Tags:       []string{"javascript", "tutorial", "best-practices"},
			VoteCount:  250,
			ReplyCount: 34,
			ViewCount:  1563,
			ReadTime:   "8m",
			CreatedAt:  now.Add(-8 * time.Minute),
			Trending:   true,
		},
		{
			ID:       "4",
			Kind:     models.KindArticle,
			Title:    "Designing a user-friendly interface",
			Body:     "Learn the principles of creating intuitive and accessible user interfaces",
			AuthorID: "5",
			Author: models.AuthorSnapshot{
				ID:     "5",
				Name:   "Diana Lee",
				Avatar: "https://api.dicebear.com/7.x/avataaars/svg?seed=Diana",
			},
			Category:   "UI/UX",
			Tags:       []string{"design", "ui", "ux"},
			VoteCount:  180,
			ReplyCount: 45,
			ViewCount:  1024,
			ReadTime:   "12m",
			CreatedAt:  now.Add(-time.Hour),
			Trending:   true,
		},
	}
}
