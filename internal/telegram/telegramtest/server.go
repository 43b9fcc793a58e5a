// Package telegramtest provides a fake Bot API server for tests that drive a
// real go-telegram client.
package telegramtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
)

// Token is the bot token used by clients created with NewBot.
const Token = "123456:TEST-TOKEN"

// Call is one recorded Bot API request.
type Call struct {
	Method string
	Params map[string]string
}

// Int64 parses the named parameter, returning 0 when absent.
func (c Call) Int64(name string) int64 {
	v, _ := strconv.ParseInt(c.Params[name], 10, 64)
	return v
}

// APIError is returned by a Responder to simulate a failed request.
type APIError struct {
	Code        int
	Description string
}

// Responder produces the result of a Bot API method.
type Responder func(params map[string]string) (any, *APIError)

// BadRequest is a 400 error with the given description.
func BadRequest(description string) *APIError {
	return &APIError{Code: http.StatusBadRequest, Description: "Bad Request: " + description}
}

// Forbidden is a 403 error with the given description.
func Forbidden(description string) *APIError {
	return &APIError{Code: http.StatusForbidden, Description: "Forbidden: " + description}
}

// Server is an httptest server speaking the Bot API wire format.
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	calls      []Call
	responders map[string]Responder
	nextMsgID  int
}

// NewServer starts a fake server that is closed when t finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{responders: make(map[string]Responder), nextMsgID: 100}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

// NewBot returns a client bound to s that skips the startup getMe call and
// runs handlers synchronously, so ProcessUpdate returns after the handler is
// done and its requests are visible to the test.
func (s *Server) NewBot(t testing.TB, opts ...bot.Option) *bot.Bot {
	t.Helper()
	opts = append([]bot.Option{bot.WithServerURL(s.URL), bot.WithSkipGetMe(), bot.WithNotAsyncHandlers()}, opts...)
	b, err := bot.New(Token, opts...)
	if err != nil {
		t.Fatalf("failed to create bot: %v", err)
	}
	return b
}

// Handle installs r for method, replacing any previous responder.
func (s *Server) Handle(method string, r Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responders[method] = r
}

// Calls returns the recorded requests for method, or all requests when empty.
func (s *Server) Calls(method string) []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Call
	for _, c := range s.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Texts returns the text of every sendMessage request, in order.
func (s *Server) Texts() []string {
	var out []string
	for _, c := range s.Calls("sendMessage") {
		out = append(out, c.Params["text"])
	}
	return out
}

func parseParams(r *http.Request) map[string]string {
	params := make(map[string]string)
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(10 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				if len(v) > 0 {
					params[k] = v[0]
				}
			}
		}
	case strings.HasPrefix(ct, "application/json"):
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(r.Body).Decode(&raw); err == nil {
			for k, v := range raw {
				var str string
				if json.Unmarshal(v, &str) == nil {
					params[k] = str
				} else {
					params[k] = string(v)
				}
			}
		}
	default:
		if err := r.ParseForm(); err == nil {
			for k, v := range r.Form {
				if len(v) > 0 {
					params[k] = v[0]
				}
			}
		}
	}
	return params
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	method := path.Base(r.URL.Path)
	params := parseParams(r)

	s.mu.Lock()
	s.calls = append(s.calls, Call{Method: method, Params: params})
	responder := s.responders[method]
	s.nextMsgID++
	msgID := s.nextMsgID
	s.mu.Unlock()

	var (
		result any
		apiErr *APIError
	)
	if responder != nil {
		result, apiErr = responder(params)
	} else {
		result = defaultResult(method, params, msgID)
	}

	w.Header().Set("Content-Type", "application/json")
	if apiErr != nil {
		w.WriteHeader(apiErr.Code)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"error_code":  apiErr.Code,
			"description": apiErr.Description,
		})
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "result": result})
}

func defaultResult(method string, params map[string]string, msgID int) any {
	switch method {
	case "sendMessage":
		chatID, _ := strconv.ParseInt(params["chat_id"], 10, 64)
		return map[string]any{
			"message_id": msgID,
			"date":       0,
			"chat":       map[string]any{"id": chatID, "type": "supergroup"},
			"text":       params["text"],
		}
	case "getUpdates":
		return []any{}
	default:
		return true
	}
}

// Member builds a getChatMember result with the given status.
func Member(status string, userID int64) map[string]any {
	return map[string]any{
		"status": status,
		"user":   map[string]any{"id": userID, "is_bot": false, "first_name": "user"},
	}
}

// PrivateChat builds a getChat result for a user.
func PrivateChat(id int64, username, firstName string) map[string]any {
	return map[string]any{
		"id":                 id,
		"type":               "private",
		"username":           username,
		"first_name":         firstName,
		"accent_color_id":    0,
		"max_reaction_count": 0,
	}
}

// PublicChat builds a getChat result for a group or channel.
func PublicChat(id int64, chatType, title string) map[string]any {
	return map[string]any{
		"id":                 id,
		"type":               chatType,
		"title":              title,
		"accent_color_id":    0,
		"max_reaction_count": 0,
	}
}
