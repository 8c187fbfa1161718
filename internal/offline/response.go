package offline

import (
	"net/http"
	"strconv"
	"time"
)

// Response sources reported to callers.
const (
	SourceNetwork = "network"
	SourceCache   = "cache"
	SourceShell   = "shell"
	SourceBypass  = "bypass"
)

// hopHeaders are connection-scoped and never stored or replayed.
var hopHeaders = []string{
	"Connection", "Keep-Alive", "Proxy-Authenticate", "Proxy-Authorization",
	"Te", "Trailer", "Transfer-Encoding", "Upgrade",
}

// Response is a fully buffered HTTP response that can be cached.
type Response struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"storedAt"`

	// Source is set per answer and never persisted.
	Source string `json:"-"`
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r != nil && r.Status >= 200 && r.Status < 300
}

// Clone returns a deep copy.
func (r *Response) Clone() *Response {
	if r == nil {
		return nil
	}
	c := *r
	c.Header = r.Header.Clone()
	c.Body = append([]byte(nil), r.Body...)
	return &c
}

// Serve replays the response onto w.
func (r *Response) Serve(w http.ResponseWriter) error {
	h := w.Header()
	for k, vv := range r.Header {
		for _, v := range vv {
			h.Add(k, v)
		}
	}
	h.Set("Content-Length", strconv.Itoa(len(r.Body)))
	if r.Source != "" {
		h.Set("X-Linktree-Source", r.Source)
	}
	w.WriteHeader(r.Status)
	_, err := w.Write(r.Body)
	return err
}

func stripHopHeaders(h http.Header) http.Header {
	out := h.Clone()
	if out == nil {
		out = http.Header{}
	}
	for _, k := range hopHeaders {
		out.Del(k)
	}
	out.Del("Content-Length")
	return out
}
