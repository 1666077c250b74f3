package middleware

import "github.com/gofiber/fiber/v2"

const requestCacheKey = "requestCache"

// RequestCache memoizes read queries for the lifetime of one request. The
// learn endpoints resolve the same user progress and subscription rows
// several times while assembling a response; within a single request those
// reads must also agree with each other.
type RequestCache struct {
	entries map[string]interface{}
}

// RequestCacheMiddleware installs a fresh cache into every request.
func RequestCacheMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals(requestCacheKey, &RequestCache{entries: make(map[string]interface{})})
		return c.Next()
	}
}

// Cache returns the request's memoization cache, or nil outside the
// middleware (callers fall through to the underlying query).
func Cache(c *fiber.Ctx) *RequestCache {
	cache, _ := c.Locals(requestCacheKey).(*RequestCache)
	return cache
}

// Memo returns the cached value for key, computing and storing it on a miss.
func (rc *RequestCache) Memo(key string, load func() (interface{}, error)) (interface{}, error) {
	if rc == nil {
		return load()
	}
	if v, ok := rc.entries[key]; ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	rc.entries[key] = v
	return v, nil
}
