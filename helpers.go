package main

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"golang.org/x/time/rate"
)

type ContextKey string

const (
	RequestIDPrefix         string     = "r"
	RequestIDContextKey     ContextKey = "request.id"
	RequestNumberContextKey ContextKey = "request.number"
	ConnContextKey          ContextKey = "http-conn"
)

var _ UIDHandler = (*IDsHandler)(nil) // ensure IDsHandler implements UIDHandler.

// UIDHandler is an interface for getting and checking prefixed uids.
type UIDHandler interface {
	Generate(prefix string) string
	IsValid(id, prefix string) bool
}

// IDsHandler implements the UIDHandler interface with random uuids.
type IDsHandler struct{}

// NewIDsHandler returns a ready to use IDsHandler.
func NewIDsHandler() *IDsHandler {
	return &IDsHandler{}
}

// Generate provides a random unique identifier.
func (idh *IDsHandler) Generate(prefix string) string {
	id, _ := uuid.NewV4()
	return prefix + ":" + id.String()
}

// IsValid checks if a given string is a valid uuid after removal of custom prefix.
func (idh *IDsHandler) IsValid(id, prefix string) bool {
	return uuid.FromStringOrNil(strings.TrimPrefix(id, prefix+":")) != uuid.Nil
}

// GetValueFromContext returns the value of a given key in the context
// if this key is not available, it returns an empty string.
func GetValueFromContext(ctx context.Context, contextKey ContextKey) string {
	if val, ok := ctx.Value(contextKey).(string); ok {
		return val
	}
	return ""
}

// GetRequestNumberFromContext returns the request number set in
// the context. if not previously set then it returns 0.
func GetRequestNumberFromContext(ctx context.Context) uint64 {
	if val, ok := ctx.Value(RequestNumberContextKey).(uint64); ok {
		return val
	}
	return 0
}

// DecodeBookRequestBody reads the book sent for a creation or an update.
// The status accepts the internal name or the label.
func DecodeBookRequestBody(r *http.Request, book *Book) error {
	if r.Body == nil {
		return errors.New("invalid book request body")
	}
	return json.NewDecoder(r.Body).Decode(book)
}

// fileRequest is the body of the save and load calls.
type fileRequest struct {
	Path string `json:"path"`
}

// DecodeFileRequestBody reads the file name sent for a save or a load.
func DecodeFileRequestBody(r *http.Request) (string, error) {
	if r.Body == nil {
		return "", errors.New("invalid file request body")
	}
	var req fileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", err
	}
	if strings.TrimSpace(req.Path) == "" {
		return "", errors.New("path is required")
	}
	return req.Path, nil
}

// errorStatus maps an error of the catalogue to its http status code.
func errorStatus(err error) int {
	var loadErr *LoadError
	switch {
	case errors.As(err, &loadErr),
		errors.Is(err, ErrFileFormat),
		errors.Is(err, ErrUnsupportedFormat):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrBookNotFound), errors.Is(err, ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicateISBN),
		errors.Is(err, ErrNothingToUndo),
		errors.Is(err, ErrNothingToRedo):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidBook),
		errors.Is(err, ErrUnknownStatus),
		errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrUnsafePath):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// errorData returns the details sent to clients along with an error:
// one line per rejected record for loads, one per invalid field for
// validation failures and the message otherwise.
func errorData(err error) interface{} {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Messages()
	}
	var fieldErr *FieldError
	if errors.As(err, &fieldErr) {
		return fieldErrors(err)
	}
	if errorStatus(err) == http.StatusInternalServerError {
		return "internal error"
	}
	return err.Error()
}

// GetRequestSourceIP helps find the source IP of the caller.
func GetRequestSourceIP(r *http.Request) string {
	// Get IP from the X-REAL-IP header
	ip := r.Header.Get("X-REAL-IP")
	netIP := net.ParseIP(ip)
	if netIP != nil {
		return ip
	}

	// Get IP from X-FORWARDED-FOR header
	ips := r.Header.Get("X-FORWARDED-FOR")
	for _, ip := range strings.Split(ips, ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	// Get IP from RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return ""
	}
	if net.ParseIP(ip) != nil {
		return ip
	}
	return ""
}

// IsAppRunningInDocker checks the existence of the .dockerenv
// file at the root directory and returns a boolean result. This
// helps know if the App is running in a docker container or not.
func IsAppRunningInDocker() bool {
	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}
	return false
}

// SaveConnInContext is the hook used by the server under ConnContext.
// It sets the underlying connection into the request context for later
// use by ReadDeadline or WriteDeadline method on *CustomResponseWriter.
func SaveConnInContext(ctx context.Context, c net.Conn) context.Context {
	return context.WithValue(ctx, ConnContextKey, c)
}

// GetConnFromContext returns the connection saved into the context or nil.
func GetConnFromContext(ctx context.Context) net.Conn {
	c, _ := ctx.Value(ConnContextKey).(net.Conn)
	return c
}

// visitor is the token bucket of one client ip.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter gives each client ip its own token bucket. Buckets not
// used for three minutes are dropped.
type IPRateLimiter struct {
	mu       sync.Mutex
	clock    Clocker
	limit    rate.Limit
	burst    int
	visitors map[string]*visitor
	swept    time.Time
}

// NewIPRateLimiter returns a limiter allowing limit requests per second
// and bursts of burst requests to every ip.
func NewIPRateLimiter(clock Clocker, limit float64, burst int) *IPRateLimiter {
	return &IPRateLimiter{
		clock:    clock,
		limit:    rate.Limit(limit),
		burst:    burst,
		visitors: make(map[string]*visitor),
		swept:    clock.Now(),
	}
}

// Allow consumes one token of ip and reports whether there was one.
func (rl *IPRateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.clock.Now()
	if now.Sub(rl.swept) > time.Minute {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) > 3*time.Minute {
				delete(rl.visitors, k)
			}
		}
		rl.swept = now
	}
	v, found := rl.visitors[ip]
	if !found {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter.AllowN(now, 1)
}
