package models

// Section is one titled piece of free-form documentation.
type Section struct {
	Title    string `json:"title"`
	Filename string `json:"filename"`
	Format   Format `json:"format"`
	Content  string `json:"content"`
	Order    int    `json:"order"`
}

// Documentation is the receiving collection for imported sections and decisions.
// Decisions are keyed by ID; adding a decision whose ID is already present
// replaces it in its original position.
type Documentation struct {
	sections  []*Section
	decisions []*Decision
	byID      map[string]int
}

// NewDocumentation returns an empty collection.
func NewDocumentation() *Documentation {
	return &Documentation{byID: make(map[string]int)}
}

// AddDecision registers d with the collection.
func (doc *Documentation) AddDecision(d *Decision) {
	if d == nil {
		return
	}
	if doc.byID == nil {
		doc.byID = make(map[string]int)
	}
	if i, ok := doc.byID[d.ID]; ok {
		doc.decisions[i] = d
		return
	}
	doc.byID[d.ID] = len(doc.decisions)
	doc.decisions = append(doc.decisions, d)
}

// Decisions returns the registered decisions in insertion order.
func (doc *Documentation) Decisions() []*Decision {
	out := make([]*Decision, len(doc.decisions))
	copy(out, doc.decisions)
	return out
}

// Decision looks up a decision by ID.
func (doc *Documentation) Decision(id string) (*Decision, bool) {
	i, ok := doc.byID[id]
	if !ok {
		return nil, false
	}
	return doc.decisions[i], true
}

// AddSection appends s, assigning it the next order number.
func (doc *Documentation) AddSection(s *Section) {
	if s == nil {
		return
	}
	s.Order = len(doc.sections) + 1
	doc.sections = append(doc.sections, s)
}

// Sections returns the registered sections in order.
func (doc *Documentation) Sections() []*Section {
	out := make([]*Section, len(doc.sections))
	copy(out, doc.sections)
	return out
}
