package snapshot

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"flow_navigator/application/locator"
	"flow_navigator/domain/entities"
	"flow_navigator/domain/interfaces"
)

var (
	interactiveTags = map[string]bool{
		"input": true, "button": true, "a": true, "select": true, "textarea": true, "form": true,
	}
	textTags = map[string]bool{
		"p": true, "span": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	}
	containerTags = map[string]bool{"div": true, "span": true, "p": true}
)

// Settings controls snapshot capture
type Settings struct {
	NetworkIdleTimeout time.Duration
	TextLimit          int
}

// Snapshotter turns the live document into a flat list of element records
type Snapshotter struct {
	settings Settings
	logger   *logrus.Logger
}

// NewSnapshotter - creates new snapshotter
func NewSnapshotter(settings Settings, logger *logrus.Logger) *Snapshotter {
	if settings.TextLimit <= 0 {
		settings.TextLimit = 150
	}
	return &Snapshotter{
		settings: settings,
		logger:   logger,
	}
}

// Capture - waits for the network to settle and snapshots the current page.
// It always returns a snapshot; failures yield fewer elements, never an error.
func (s *Snapshotter) Capture(ctx context.Context, page interfaces.Page) entities.PageSnapshot {
	if err := page.WaitForNetworkIdle(ctx, s.settings.NetworkIdleTimeout); err != nil {
		s.logger.WithError(err).Warn("Network did not settle before snapshot, capturing anyway")
	}

	snap := entities.PageSnapshot{URL: page.URL(), Elements: []entities.ElementRecord{}}

	root, err := page.DOMTree(ctx)
	if err != nil {
		s.logger.WithError(err).WithField("url", snap.URL).Error("Failed to walk DOM")
		return snap
	}
	if root == nil {
		s.logger.WithField("url", snap.URL).Warn("No body element found")
		return snap
	}

	snap.Elements = s.Collect(root)
	return snap
}

// Collect - classifies a raw node tree and applies text de-duplication
func (s *Snapshotter) Collect(root *entities.DOMNode) []entities.ElementRecord {
	var records []entities.ElementRecord
	s.walk(root, 0, "", &records)
	return Dedupe(records)
}

func (s *Snapshotter) walk(node *entities.DOMNode, depth int, parentText string, out *[]entities.ElementRecord) {
	if node == nil {
		return
	}
	if node.Err != "" {
		s.logger.WithFields(logrus.Fields{
			"depth": depth,
			"tag":   node.Tag,
			"error": node.Err,
		}).Warn("Error processing element, skipping subtree")
		return
	}

	if include, text := s.classify(node); include {
		rec := entities.ElementRecord{
			Tag:         node.Tag,
			ID:          node.Attrs["id"],
			Name:        node.Attrs["name"],
			Type:        node.Attrs["type"],
			Placeholder: node.Attrs["placeholder"],
			Value:       node.Attrs["value"],
			Text:        text,
			Attrs:       copyAttrs(node.Attrs),
			Clickable:   node.Clickable,
			Depth:       depth,
			ParentText:  parentText,
		}
		rec.PreferredLocators = locator.Synthesize(rec)
		*out = append(*out, rec)
	}

	ownText := truncate(node.DirectText, s.settings.TextLimit)
	for _, child := range node.Children {
		s.walk(child, depth+1, ownText, out)
	}
}

// classify - decides whether a node becomes a record and which text it carries.
// Containers need direct text so a wrapper never repeats its child's label.
func (s *Snapshotter) classify(node *entities.DOMNode) (bool, string) {
	limit := s.settings.TextLimit
	tag := node.Tag

	switch {
	case interactiveTags[tag]:
		return true, truncate(node.FullText, limit)
	case textTags[tag] && node.DirectText != "":
		return true, truncate(node.DirectText, limit)
	case containerTags[tag]:
		meaningful := node.Attrs["id"] != "" ||
			node.Attrs["data-testid"] != "" ||
			node.Attrs["role"] == "button" ||
			node.Clickable
		if meaningful && node.DirectText != "" {
			return true, truncate(node.DirectText, limit)
		}
	}
	return false, ""
}

// Dedupe - keeps one record per non-empty text, the deepest one.
// Records without text are all kept. Order follows first appearance.
func Dedupe(records []entities.ElementRecord) []entities.ElementRecord {
	out := make([]entities.ElementRecord, 0, len(records))
	byText := make(map[string]int)

	for _, rec := range records {
		if rec.Text == "" {
			out = append(out, rec)
			continue
		}
		if i, ok := byText[rec.Text]; ok {
			if rec.Depth > out[i].Depth {
				out[i] = rec
			}
			continue
		}
		byText[rec.Text] = len(out)
		out = append(out, rec)
	}
	return out
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 0 || len(r) <= limit {
		return s
	}
	return string(r[:limit])
}

func copyAttrs(attrs map[string]string) map[string]string {
	out := make(map[string]string, len(attrs))
	for k, v := range attrs {
		out[k] = v
	}
	return out
}
