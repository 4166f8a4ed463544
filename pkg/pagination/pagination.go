package pagination

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 10
	// MaxLimit caps how many rows any page can request.
	MaxLimit = 100
)

// Params holds page/limit pagination inputs from controllers or services.
// Page is 1-based.
type Params struct {
	Page  int
	Limit int
}

// NormalizeLimit enforces the given default and the package maximum.
func NormalizeLimit(limit, fallback int) int {
	if fallback <= 0 {
		fallback = DefaultLimit
	}
	if limit <= 0 {
		return fallback
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Normalize returns a copy with page >= 1 and a bounded limit.
func (p Params) Normalize(fallbackLimit int) Params {
	page := p.Page
	if page < 1 {
		page = 1
	}
	return Params{Page: page, Limit: NormalizeLimit(p.Limit, fallbackLimit)}
}

// Offset is the number of rows to skip for the page.
func (p Params) Offset() int {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// TotalPages rounds total/limit up. Zero rows yield zero pages.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}
