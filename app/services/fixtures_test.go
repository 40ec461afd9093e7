package services

import (
	"testing"

	"postviewer/app/models"
	"postviewer/app/repositories/mock"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func testSource() *mock.Source {
	return mock.NewSource().
		AddUser(
			models.User{ID: 1, Name: "Leanne Graham", Company: models.Company{Name: "Romaguera-Crona", CatchPhrase: "Multi-layered client-server neural-net"}},
			models.User{ID: 2, Name: "Ervin Howell", Company: models.Company{Name: "Deckow-Crist", CatchPhrase: "Proactive didactic contingency"}},
			models.User{ID: 3, Name: "Clementine Bauch", Company: models.Company{Name: "Romaguera-Jacobson", CatchPhrase: "Face to face bifurcated interface"}},
		).
		AddPost(
			models.Post{ID: 1, UserID: 1, Title: "sunt aut facere", Body: "quia et suscipit"},
			models.Post{ID: 21, UserID: 3, Title: "asperiores ea ipsam", Body: "dolorem dolore est"},
			models.Post{ID: 22, UserID: 3, Title: "dolor sint quo a velit", Body: "fugiat quod pariatur"},
		).
		AddComment(
			models.Comment{ID: 101, PostID: 21, Name: "quas fugiat", Email: "Kari@jerrod.biz", Body: "ut dolorum"},
			models.Comment{ID: 102, PostID: 21, Name: "sit ut incidunt", Email: "Abby@mira.com", Body: "et quod"},
		)
}

func observedLogger(t *testing.T) (*zap.Logger, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}
