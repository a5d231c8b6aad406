package domain

// Workspace - владелец политик по умолчанию и настроек модели.
type Workspace struct {
	ID            int
	Slug          string
	Provider      Provider
	Name          string
	MinSeverity   Severity
	HourlyRate    float64
	Model         string
	APIKey        *string
	EffortWeights map[Severity]float64
}

// Repository - репозиторий внутри workspace, переопределяет его политики.
type Repository struct {
	ID          int
	WorkspaceID int
	Slug        string
	Provider    Provider
	IsActive    bool
	IgnoreGlobs []string
	MinSeverity *Severity
}

// ReviewPolicy - эффективная политика фильтрации для репозитория.
type ReviewPolicy struct {
	Repository *Repository
	Workspace  *Workspace
}

// EffectiveMinSeverity возвращает порог репозитория, если он задан,
// иначе дефолт workspace.
func (p ReviewPolicy) EffectiveMinSeverity() Severity {
	if p.Repository != nil && p.Repository.MinSeverity != nil {
		return *p.Repository.MinSeverity
	}
	return p.Workspace.MinSeverity
}

// EffortWeight возвращает вес серьезности в оценке усилий ревью.
func (p ReviewPolicy) EffortWeight(s Severity) float64 {
	return p.Workspace.EffortWeights[s]
}
