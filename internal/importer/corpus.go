package importer

import "github.com/starford/decisionlog/internal/models"

// corpus indexes the decisions of one import call by ID and by original
// filename. Both indexes keep first-insertion order; a repeated ID keeps its
// original position but points at the later decision.
type corpus struct {
	ids        []string
	byID       map[string]*models.Decision
	filenames  []string
	byFilename map[string]*models.Decision
}

func newCorpus() *corpus {
	return &corpus{
		byID:       make(map[string]*models.Decision),
		byFilename: make(map[string]*models.Decision),
	}
}

func (c *corpus) add(filename string, d *models.Decision) {
	if _, ok := c.byID[d.ID]; !ok {
		c.ids = append(c.ids, d.ID)
	}
	c.byID[d.ID] = d

	if _, ok := c.byFilename[filename]; !ok {
		c.filenames = append(c.filenames, filename)
	}
	c.byFilename[filename] = d
}

// decisions returns the ID index values in order.
func (c *corpus) decisions() []*models.Decision {
	out := make([]*models.Decision, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.byID[id])
	}
	return out
}
