package sync

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SSESource opens server-sent-event snapshot streams against the API.
// Each `snapshot` event carries the full collection as JSON.
type SSESource[T any] struct {
	baseURL    string
	path       string
	ownerParam string
	token      func() string
	http       *http.Client
}

// NewSSESource builds a source for one stream path, e.g. "/stream/orders".
// ownerParam names the query parameter the owner key is sent as; leave it
// empty for streams the backend scopes by bearer token alone (chat message
// streams use "peer"). token is read per connection so a refreshed token is
// picked up on rebind.
func NewSSESource[T any](baseURL, path, ownerParam string, token func() string) *SSESource[T] {
	return &SSESource[T]{
		baseURL:    strings.TrimRight(baseURL, "/"),
		path:       path,
		ownerParam: ownerParam,
		token:      token,
		// No overall timeout: the stream stays open until closed.
		http: &http.Client{},
	}
}

// Subscribe opens the stream.
func (s *SSESource[T]) Subscribe(ctx context.Context, owner string) (Subscription[T], error) {
	url := s.baseURL + s.path
	if s.ownerParam != "" && owner != "" {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + s.ownerParam + "=" + owner
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	if tok := s.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream %s: unexpected status %d", s.path, resp.StatusCode)
	}

	sub := &sseSubscription[T]{
		resp: resp,
		ch:   make(chan []T),
		done: make(chan struct{}),
	}
	go sub.read()
	return sub, nil
}

type sseSubscription[T any] struct {
	resp *http.Response
	ch   chan []T
	done chan struct{}
	err  error
}

func (s *sseSubscription[T]) Snapshots() <-chan []T { return s.ch }

func (s *sseSubscription[T]) Err() error { return s.err }

func (s *sseSubscription[T]) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.resp.Body.Close()
}

// read parses the event stream frame by frame. Heartbeat comments and
// unknown event names are skipped.
func (s *sseSubscription[T]) read() {
	defer close(s.ch)

	scanner := bufio.NewScanner(s.resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	event := ""
	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if event == "snapshot" && data.Len() > 0 {
				var items []T
				if err := json.Unmarshal([]byte(data.String()), &items); err == nil {
					select {
					case s.ch <- items:
					case <-s.done:
						return
					}
				}
			}
			event = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// heartbeat
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}

	select {
	case <-s.done:
	default:
		if err := scanner.Err(); err != nil {
			s.err = err
		} else {
			s.err = fmt.Errorf("stream closed by server")
		}
	}
}

// Poller wraps a fetch function as a Source for environments without SSE.
// It emits one snapshot immediately and then one per interval.
type Poller[T any] struct {
	Fetch    func(ctx context.Context, owner string) ([]T, error)
	Interval time.Duration
}

func (p *Poller[T]) Subscribe(ctx context.Context, owner string) (Subscription[T], error) {
	first, err := p.Fetch(ctx, owner)
	if err != nil {
		return nil, err
	}
	sub := &pollSubscription[T]{ch: make(chan []T, 1), done: make(chan struct{})}
	sub.ch <- first
	go sub.loop(ctx, p, owner)
	return sub, nil
}

type pollSubscription[T any] struct {
	ch   chan []T
	done chan struct{}
	err  error
}

func (s *pollSubscription[T]) Snapshots() <-chan []T { return s.ch }
func (s *pollSubscription[T]) Err() error            { return s.err }

func (s *pollSubscription[T]) Close() {
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}

func (s *pollSubscription[T]) loop(ctx context.Context, p *Poller[T], owner string) {
	defer close(s.ch)
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-ticker.C:
			items, err := p.Fetch(ctx, owner)
			if err != nil {
				s.err = err
				return
			}
			select {
			case s.ch <- items:
			case <-s.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}
}
