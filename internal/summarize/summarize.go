// Package summarize reduces article text to five numbered points via an LLM.
package summarize

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"news_aggregator/internal/llm"
	"news_aggregator/internal/logger"
	"news_aggregator/internal/metrics"
	"news_aggregator/internal/runner"
	"news_aggregator/internal/scrape"
)

const (
	DefaultChunkSize        = 4000
	DefaultChunkConcurrency = 2
	DefaultChunkMaxTokens   = 220
	DefaultFinalMaxTokens   = 200

	pointCount = 5
)

var rePointBoundary = regexp.MustCompile(`\s\d\)`)

type Config struct {
	ChunkSize        int     `yaml:"chunk_size"`
	ChunkConcurrency int     `yaml:"chunk_concurrency"`
	ChunkMaxTokens   int     `yaml:"chunk_max_tokens"`
	FinalMaxTokens   int     `yaml:"final_max_tokens"`
	Prompts          Prompts `yaml:"prompts"`
}

func (c Config) withDefaults() Config {
	if c.ChunkSize <= 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkConcurrency <= 0 {
		c.ChunkConcurrency = DefaultChunkConcurrency
	}
	if c.ChunkMaxTokens <= 0 {
		c.ChunkMaxTokens = DefaultChunkMaxTokens
	}
	if c.FinalMaxTokens <= 0 {
		c.FinalMaxTokens = DefaultFinalMaxTokens
	}
	c.Prompts = c.Prompts.withDefaults()
	return c
}

type Summarizer struct {
	completer llm.Completer
	cfg       Config
	log       logger.Logger
}

func New(completer llm.Completer, cfg Config, log logger.Logger) *Summarizer {
	return &Summarizer{
		completer: completer,
		cfg:       cfg.withDefaults(),
		log:       log,
	}
}

// Summarize returns a five-line summary of content, or "" when content is blank.
// Long texts are summarized per chunk first; any chunk failure fails the call.
func (s *Summarizer) Summarize(ctx context.Context, content string) (string, error) {
	text := scrape.NormalizeText(content)
	if text == "" {
		return "", nil
	}

	chunks := SplitIntoChunks(text, s.cfg.ChunkSize)

	var chunkSummaries []string
	if len(chunks) == 1 {
		chunkSummaries = chunks
	} else {
		tasks := make([]runner.Task[string], len(chunks))
		for i, chunk := range chunks {
			messages := s.chunkPrompt(chunk, i+1, len(chunks))
			tasks[i] = func(ctx context.Context) (string, error) {
				return s.complete(ctx, messages, s.cfg.ChunkMaxTokens)
			}
		}

		res := runner.Map(ctx, tasks, s.cfg.ChunkConcurrency)
		if len(res.Errors) > 0 {
			return "", fmt.Errorf("LLM summarization failed: %s", strings.Join(res.Errors, "; "))
		}
		chunkSummaries = res.Results
		s.log.Debug("Summarized chunks", logger.Int("chunks", len(chunks)))
	}

	summary, err := s.complete(ctx, s.finalPrompt(chunkSummaries), s.cfg.FinalMaxTokens)
	if err != nil {
		return "", err
	}

	return ForceFiveLines(summary, s.cfg.Prompts.Filler), nil
}

func (s *Summarizer) complete(ctx context.Context, messages []llm.Message, maxTokens int) (string, error) {
	out, err := s.completer.Complete(ctx, messages, llm.Options{MaxTokens: maxTokens})
	metrics.RecordLLMRequest(err)
	return out, err
}

func (s *Summarizer) chunkPrompt(chunk string, index, total int) []llm.Message {
	user := strings.NewReplacer(
		"{index}", strconv.Itoa(index),
		"{total}", strconv.Itoa(total),
		"{chunk}", chunk,
	).Replace(s.cfg.Prompts.ChunkUser)

	return []llm.Message{
		{Role: llm.RoleSystem, Content: s.cfg.Prompts.ChunkSystem},
		{Role: llm.RoleUser, Content: user},
	}
}

func (s *Summarizer) finalPrompt(chunkSummaries []string) []llm.Message {
	user := strings.ReplaceAll(s.cfg.Prompts.FinalUser, "{text}", strings.Join(chunkSummaries, "\n\n"))

	return []llm.Message{
		{Role: llm.RoleSystem, Content: s.cfg.Prompts.FinalSystem},
		{Role: llm.RoleUser, Content: user},
	}
}

// SplitIntoChunks cuts text into pieces of at most size runes.
func SplitIntoChunks(text string, size int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}
	if size <= 0 {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

// ForceFiveLines reshapes an LLM answer into exactly five "N) ..." lines.
// Anything before the first "1)" is dropped and missing points are padded
// with filler.
func ForceFiveLines(text string, filler string) string {
	if filler == "" {
		filler = DefaultFiller
	}

	body := text
	if parts := strings.SplitN(text, "1)", 3); len(parts) > 1 {
		body = parts[1]
	}
	body = "1)" + body

	points := splitPoints(body)
	if len(points) > pointCount {
		points = points[:pointCount]
	}
	for i := range points {
		points[i] = strings.TrimSpace(points[i])
	}
	for len(points) < pointCount {
		points = append(points, strconv.Itoa(len(points)+1)+") "+filler)
	}

	return strings.Join(points, "\n")
}

// splitPoints splits before every whitespace-prefixed point marker, dropping
// the whitespace itself.
func splitPoints(s string) []string {
	var points []string
	last := 0
	for _, loc := range rePointBoundary.FindAllStringIndex(s, -1) {
		points = append(points, s[last:loc[0]])
		last = loc[0] + 1
	}
	return append(points, s[last:])
}
