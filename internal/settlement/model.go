package settlement

// Status de um resultado declarado.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)
