package differ

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/egigoka/telegram-update-checker/internal/config"
	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/net/html"
)

// Normalizer rewrites both versions of a document into the form that is
// diffed. The pair is normalized together so both sides use one policy.
type Normalizer interface {
	NormalizePair(previous, current string) (string, string, error)
}

// NewNormalizer returns the normalizer registered under name. selector, if
// set, narrows HTML normalization to the matched nodes.
func NewNormalizer(name, selector string) (Normalizer, error) {
	switch strings.ToLower(name) {
	case config.NormalizerNone, "":
		return noneNormalizer{}, nil
	case config.NormalizerHTML:
		return &htmlNormalizer{selector: selector}, nil
	case config.NormalizerAuto:
		return &autoNormalizer{html: &htmlNormalizer{selector: selector}}, nil
	default:
		return nil, fmt.Errorf("unknown normalizer '%s'", name)
	}
}

type noneNormalizer struct{}

func (noneNormalizer) NormalizePair(previous, current string) (string, string, error) {
	return previous, current, nil
}

type htmlNormalizer struct {
	selector string
}

func (n *htmlNormalizer) NormalizePair(previous, current string) (string, string, error) {
	oldText, err := n.normalize(previous)
	if err != nil {
		return "", "", fmt.Errorf("previous content: %w", err)
	}
	newText, err := n.normalize(current)
	if err != nil {
		return "", "", fmt.Errorf("current content: %w", err)
	}
	return oldText, newText, nil
}

func (n *htmlNormalizer) normalize(content string) (string, error) {
	if n.selector == "" {
		root, err := html.Parse(strings.NewReader(content))
		if err != nil {
			return "", err
		}
		return PrettyPrint(root), nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", err
	}
	selection := doc.Find(n.selector)
	// Empty content has nothing to select; it is the baseline of a new URL.
	if selection.Length() == 0 && strings.TrimSpace(content) != "" {
		return "", fmt.Errorf("selector '%s' matched no nodes", n.selector)
	}
	return PrettyPrint(selection.Nodes...), nil
}

// autoNormalizer pretty-prints only when one of the versions looks like
// HTML and otherwise compares the text as is.
type autoNormalizer struct {
	html *htmlNormalizer
}

func (n *autoNormalizer) NormalizePair(previous, current string) (string, string, error) {
	if !looksLikeHTML(previous) && !looksLikeHTML(current) {
		return previous, current, nil
	}
	return n.html.NormalizePair(previous, current)
}

func looksLikeHTML(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	mtype := mimetype.Detect([]byte(content))
	return mtype.Is("text/html") || mtype.Is("application/xhtml+xml")
}
