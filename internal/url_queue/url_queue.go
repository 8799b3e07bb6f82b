package urlqueue

import (
	"regexp"
	"sync"
)

// URLQueue is an insertion-ordered set of URLs with an optional size cap.
type URLQueue struct {
	seen     map[string]bool
	queue    []string
	maxItems int
	mu       sync.Mutex
}

// NewURLQueue creates a queue that accepts at most maxItems URLs; zero means no cap.
func NewURLQueue(maxItems int) *URLQueue {
	return &URLQueue{
		seen:     make(map[string]bool),
		queue:    make([]string, 0),
		maxItems: maxItems,
	}
}

// Add appends urlStr unless it was already added or the queue is full.
func (q *URLQueue) Add(urlStr string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.seen[urlStr] {
		return false
	}
	if q.maxItems > 0 && len(q.queue) >= q.maxItems {
		return false
	}
	q.seen[urlStr] = true
	q.queue = append(q.queue, urlStr)
	return true
}

func (q *URLQueue) AddAll(urls []string) {
	for _, u := range urls {
		q.Add(u)
	}
}

// URLs returns a copy of the queued URLs in insertion order.
func (q *URLQueue) URLs() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]string, len(q.queue))
	copy(out, q.queue)
	return out
}

func (q *URLQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

var patternCache sync.Map

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}

// URLMatchesPattern reports whether urlStr matches pattern. An empty or invalid
// pattern matches nothing.
func URLMatchesPattern(urlStr string, pattern string) bool {
	if pattern == "" {
		return false
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return false
	}
	return re.MatchString(urlStr)
}

// URLAllowedByPattern is the permissive counterpart of URLMatchesPattern: an
// empty or invalid pattern allows everything.
func URLAllowedByPattern(urlStr string, pattern string) bool {
	if pattern == "" {
		return true
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return true
	}
	return re.MatchString(urlStr)
}

// URLShouldBeFollowed applies the allow pattern and then the deny list.
func URLShouldBeFollowed(urlStr string, allowPattern string, excludePatterns []string) bool {
	if !URLAllowedByPattern(urlStr, allowPattern) {
		return false
	}
	for _, pattern := range excludePatterns {
		if URLMatchesPattern(urlStr, pattern) {
			return false
		}
	}
	return true
}
