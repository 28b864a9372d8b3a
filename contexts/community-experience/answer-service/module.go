package answerservice

import (
	"log/slog"

	httpadapter "qaboard/contexts/community-experience/answer-service/adapters/http"
	"qaboard/contexts/community-experience/answer-service/adapters/memory"
	"qaboard/contexts/community-experience/answer-service/application/commands"
	"qaboard/contexts/community-experience/answer-service/application/queries"
	"qaboard/contexts/community-experience/answer-service/domain/entities"
	"qaboard/contexts/community-experience/answer-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Answers         ports.AnswerRepository
	Questions       ports.QuestionReader
	Users           ports.UserReader
	Events          ports.EventPublisher
	Clock           ports.Clock
	IDGen           ports.IDGenerator
	DefaultPageSize int
	Logger          *slog.Logger
}

func NewModule(deps Dependencies) Module {
	answerUseCase := commands.AnswerUseCase{
		Answers: deps.Answers,
		Events:  deps.Events,
		Clock:   deps.Clock,
		IDGen:   deps.IDGen,
		Logger:  deps.Logger,
	}
	answerQueries := queries.AnswerQueries{
		Answers:         deps.Answers,
		DefaultPageSize: deps.DefaultPageSize,
	}
	return Module{
		Handler: httpadapter.Handler{
			Answers:   answerUseCase,
			Queries:   answerQueries,
			Questions: deps.Questions,
			Users:     deps.Users,
			Logger:    deps.Logger,
		},
	}
}

// NewInMemoryModule wires every port to one memory store. events may be nil.
func NewInMemoryModule(seed []entities.Answer, events ports.EventPublisher, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Answers:         store,
		Questions:       store,
		Users:           store,
		Events:          events,
		Clock:           store,
		IDGen:           store,
		DefaultPageSize: ports.DefaultPageSize,
		Logger:          logger,
	})
	module.Store = store
	return module
}
