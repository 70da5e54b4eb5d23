// Package stream reconstructs the thinking and answer channels from an
// incremental completion fragment stream.
package stream

import (
	"strings"

	"github.com/acejesus/aceai/internal/models"
)

// Snapshot is the parser's published view after a fragment. Content and
// Thinking are trimmed; Expanded is true while the stream is active so the
// reasoning panel stays open during generation.
type Snapshot struct {
	Content  string
	Thinking string
	Expanded bool
}

// Parser splits a fragment stream into the thinking channel (between
// <think> and </think> markers) and the visible answer. A marker is assumed
// to arrive within a single fragment, never split across two. Text sharing
// a fragment with a marker is kept: the fragment is split at the marker,
// only the marker text itself is dropped.
type Parser struct {
	thinking bool
	answer   strings.Builder
	thoughts strings.Builder
	started  bool
	onStart  func()
}

// NewParser creates a parser. onStart, if non-nil, fires once per stream on
// the first fragment that puts non-empty text into the answer buffer (the
// notification-sound hook).
func NewParser(onStart func()) *Parser {
	return &Parser{onStart: onStart}
}

// Feed consumes one fragment and returns the updated snapshot.
func (p *Parser) Feed(fragment string) Snapshot {
	for fragment != "" {
		marker := models.ThinkOpenMarker
		if p.thinking {
			marker = models.ThinkCloseMarker
		}
		before, after, found := strings.Cut(fragment, marker)
		p.write(before)
		if !found {
			break
		}
		p.thinking = !p.thinking
		fragment = after
	}
	return p.snapshot(true)
}

// write appends text to the active channel.
func (p *Parser) write(text string) {
	if text == "" {
		return
	}
	if p.thinking {
		p.thoughts.WriteString(text)
		return
	}
	p.answer.WriteString(text)
	if !p.started && strings.TrimSpace(p.answer.String()) != "" {
		p.started = true
		if p.onStart != nil {
			p.onStart()
		}
	}
}

// Finish performs the final trim-and-publish pass. The reasoning panel
// collapses once the stream is done.
func (p *Parser) Finish() Snapshot {
	return p.snapshot(false)
}

// Started reports whether the answer channel has produced visible text.
func (p *Parser) Started() bool {
	return p.started
}

func (p *Parser) snapshot(active bool) Snapshot {
	return Snapshot{
		Content:  strings.TrimSpace(p.answer.String()),
		Thinking: strings.TrimSpace(p.thoughts.String()),
		Expanded: active,
	}
}
