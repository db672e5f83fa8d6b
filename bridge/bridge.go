// Package bridge implements strict question/answer alternation between a
// running workflow procedure and the caller driving it.
//
// The procedure side calls AskQuestion and waits on the returned answer.
// The caller side reads AwaitQuestion, then calls SubmitAnswer. Each side
// re-arms the other's deferred, so at most one question is outstanding at
// any time and re-reading the current question has no side effects.
package bridge

import (
	"sync"

	"github.com/xraph/dialog/promise"
	"github.com/xraph/dialog/prompt"
)

// Bridge pairs an outstanding question with a pending answer.
type Bridge struct {
	mu       sync.Mutex
	question *promise.Deferred[prompt.Prompt]
	answer   *promise.Deferred[prompt.Response]
}

// New returns a Bridge with no question asked yet.
func New() *Bridge {
	return &Bridge{
		question: promise.New[prompt.Prompt](),
		answer:   promise.New[prompt.Response](),
	}
}

// AskQuestion publishes p as the outstanding question and arms a fresh
// answer deferred, which it returns for the procedure to wait on.
func (b *Bridge) AskQuestion(p prompt.Prompt) *promise.Deferred[prompt.Response] {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.question.Settled() {
		// A question that was never answered is being replaced.
		b.question = promise.New[prompt.Prompt]()
	}
	b.question.Resolve(p)
	b.answer = promise.New[prompt.Response]()
	return b.answer
}

// SubmitAnswer resolves the pending answer with r and arms a fresh
// question deferred for the procedure's next turn.
func (b *Bridge) SubmitAnswer(r prompt.Response) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.answer.Resolve(r)
	b.question = promise.New[prompt.Prompt]()
}

// AwaitQuestion returns the current question deferred. Calling it
// repeatedly without an intervening SubmitAnswer returns the same deferred.
func (b *Bridge) AwaitQuestion() *promise.Deferred[prompt.Prompt] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.question
}

// AwaitAnswer returns the current answer deferred.
func (b *Bridge) AwaitAnswer() *promise.Deferred[prompt.Response] {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.answer
}
