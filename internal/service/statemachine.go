package service

import "github.com/bagdasarian/pr-insight/internal/domain"

// Transition - результат применения канонического события к текущему
// состоянию PR.
type Transition struct {
	PR *domain.PullRequest
	// Stale: событие старше сохраненного состояния и отброшено.
	Stale bool
	// ShaChanged: ревизия изменилась относительно сохраненной.
	ShaChanged bool
	// AnalysisCandidate: принятое событие типа created/updated
	// по активному PR - повод спросить планировщик об анализе.
	AnalysisCandidate bool
}

func isTerminalEvent(t domain.EventType) bool {
	return t == domain.EventMerged || t == domain.EventDeclined || t == domain.EventDeleted
}

// ApplyEvent - чистая функция переходов состояния PR.
//
// Порядок времени: событие старше сохраненного event_at отбрасывается
// как no-op, кроме терминальных merged/declined/deleted - они
// принимаются всегда, чтобы опоздавший "updated" не воскресил
// смерженный PR.
func ApplyEvent(current *domain.PullRequest, event domain.CanonicalEvent) Transition {
	if current != nil && event.OccurredAt.Before(current.EventAt) && !isTerminalEvent(event.Type) {
		return Transition{PR: current, Stale: true}
	}

	pr := &domain.PullRequest{}
	if current != nil {
		clone := *current
		pr = &clone
	} else {
		pr.Provider = event.Provider
		pr.Owner = event.Owner
		pr.Repo = event.RepoSlug
		pr.Number = event.PRNumber
		pr.State = domain.StateOpen
		pr.IsActive = true
		// Первое увиденное событие создает PR, и снапшот берется
		// из него независимо от типа: approved или deleted тоже
		// несут head_sha и метаданные.
		applySnapshot(pr, event)
	}

	shaChanged := event.HeadSha != "" && (current == nil || event.HeadSha != current.HeadSha)

	switch event.Type {
	case domain.EventCreated, domain.EventUpdated:
		pr.State = domain.StateOpen
		applySnapshot(pr, event)
	case domain.EventMerged:
		pr.State = domain.StateMerged
		applySnapshot(pr, event)
	case domain.EventDeclined:
		pr.State = domain.StateDeclined
		applySnapshot(pr, event)
	case domain.EventDeleted:
		// DELETED - не состояние, а снятие с учёта.
		pr.IsActive = false
	case domain.EventApproved, domain.EventUnapproved:
		// Только аннотация, состояние не меняется.
	}

	if event.OccurredAt.After(pr.EventAt) {
		pr.EventAt = event.OccurredAt
	}

	candidate := pr.IsActive &&
		(event.Type == domain.EventCreated || event.Type == domain.EventUpdated)

	return Transition{
		PR:                pr,
		ShaChanged:        shaChanged,
		AnalysisCandidate: candidate,
	}
}

func applySnapshot(pr *domain.PullRequest, event domain.CanonicalEvent) {
	if event.PRID != "" {
		pr.ProviderPRID = event.PRID
	}
	if event.Title != "" {
		pr.Title = event.Title
	}
	if event.Actor != "" {
		pr.Author = event.Actor
	}
	if event.ActorAvatar != "" {
		pr.AuthorAvatar = event.ActorAvatar
	}
	if event.URL != "" {
		pr.URL = event.URL
	}
	if event.HeadSha != "" {
		pr.HeadSha = event.HeadSha
	}
	if event.BaseSha != "" {
		pr.BaseSha = event.BaseSha
	}
}
